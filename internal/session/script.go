package session

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/figure-extractor/internal/geometry"
)

// Step is one event of a replay script.
//
//	- {event: goto_page, page: 1}
//	- {event: pointer_down, x: 100, y: 100}
//	- {event: pointer_up, x: 400, y: 400}
//	- {event: commit, as: figure}
//
// A "drag" step is shorthand for pointer_down at (x, y) followed by
// pointer_up at (x2, y2).
type Step struct {
	Event  string  `yaml:"event"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	X2     float64 `yaml:"x2"`
	Y2     float64 `yaml:"y2"`
	Page   int     `yaml:"page"`
	Mode   string  `yaml:"mode"`
	As     string  `yaml:"as"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Events converts the step into one or more events.
func (s Step) Events() ([]Event, error) {
	switch s.Event {
	case "pointer_down":
		return []Event{PointerDown{X: s.X, Y: s.Y}}, nil
	case "pointer_move":
		return []Event{PointerMove{X: s.X, Y: s.Y}}, nil
	case "pointer_up":
		return []Event{PointerUp{X: s.X, Y: s.Y}}, nil
	case "drag":
		return []Event{
			PointerDown{X: s.X, Y: s.Y},
			PointerMove{X: s.X2, Y: s.Y2},
			PointerUp{X: s.X2, Y: s.Y2},
		}, nil
	case "cancel":
		return []Event{Cancel{}}, nil
	case "next_page":
		return []Event{NextPage{}}, nil
	case "prev_page":
		return []Event{PrevPage{}}, nil
	case "goto_page":
		return []Event{GotoPage{Index: s.Page}}, nil
	case "surface":
		return []Event{SurfaceChanged{Size: geometry.Size{Width: s.Width, Height: s.Height}}}, nil
	case "set_mode":
		m, err := ParseMode(s.Mode)
		if err != nil {
			return nil, err
		}
		return []Event{SetMode{Mode: m}}, nil
	case "toggle_mode":
		return []Event{ToggleMode{}}, nil
	case "commit":
		as, err := ParseCommitKind(s.As)
		if err != nil {
			return nil, err
		}
		return []Event{Commit{As: as}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, s.Event)
}

// LoadScript decodes a YAML list of steps into events.
func LoadScript(r io.Reader) ([]Event, error) {
	var steps []Step
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}

	var events []Event
	for i, st := range steps {
		evs, err := st.Events()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		events = append(events, evs...)
	}
	return events, nil
}

// Replay applies events in order starting from s and stops at the first error.
func Replay(s State, events []Event) (State, error) {
	for i, ev := range events {
		next, _, err := Apply(s, ev)
		if err != nil {
			return s, fmt.Errorf("event %d (%s): %w", i+1, eventName(ev), err)
		}
		s = next
	}
	return s, nil
}
