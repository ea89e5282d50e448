package session

import (
	"fmt"
	"strings"

	"github.com/ironsheep/figure-extractor/internal/geometry"
)

// Mode governs which commit operations are legal.
type Mode int

const (
	// Simple mode commits standalone figures.
	Simple Mode = iota
	// Detailed mode commits a full composite figure followed by its panels.
	Detailed
)

func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Detailed:
		return "detailed"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode parses "simple" or "detailed".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return Simple, nil
	case "detailed":
		return Detailed, nil
	}
	return Simple, fmt.Errorf("unknown mode %q", s)
}

// Kind classifies a committed region.
type Kind int

const (
	// Single is a standalone figure.
	Single Kind = iota
	// Full is the whole of a composite figure.
	Full
	// Panel is a numbered part of a composite figure.
	Panel
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Full:
		return "full"
	case Panel:
		return "panel"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "single":
		*k = Single
	case "full":
		*k = Full
	case "panel":
		*k = Panel
	default:
		return fmt.Errorf("unknown region kind %q", b)
	}
	return nil
}

// Phase is the drag state of the current selection.
type Phase int

const (
	// Idle has no pending rectangle.
	Idle Phase = iota
	// Dragging updates the pending rectangle on every pointer move.
	Dragging
	// Committed holds a finished rectangle that can be committed as a region.
	Committed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// CommitKind selects which commit action is requested.
type CommitKind int

const (
	// CommitFigure commits a Single region (Simple mode).
	CommitFigure CommitKind = iota
	// CommitFull commits a Full region and opens its figure (Detailed mode).
	CommitFull
	// CommitPanel commits a Panel of the open figure (Detailed mode).
	CommitPanel
)

func (c CommitKind) String() string {
	switch c {
	case CommitFigure:
		return "figure"
	case CommitFull:
		return "full"
	case CommitPanel:
		return "panel"
	}
	return fmt.Sprintf("commit(%d)", int(c))
}

// ParseCommitKind parses "figure" (or "single"), "full" or "panel".
func ParseCommitKind(s string) (CommitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "figure", "single", "":
		return CommitFigure, nil
	case "full":
		return CommitFull, nil
	case "panel":
		return CommitPanel, nil
	}
	return CommitFigure, fmt.Errorf("unknown commit kind %q", s)
}

// Region is a committed, classified capture request tied to one page.
type Region struct {
	// Page is the zero-based page index the region was drawn on.
	Page int `json:"page_index"`

	// Rect is in rendered-pixel coordinates, normalized.
	Rect geometry.Rect `json:"rect"`

	// Surface is the rendered page size the rect was drawn against.
	Surface geometry.Size `json:"surface"`

	Kind         Kind `json:"kind"`
	FigureNumber int  `json:"figure_number"`

	// PanelNumber is 0 unless Kind is Panel.
	PanelNumber int `json:"panel_number,omitempty"`
}

// Label is a short human-readable name, e.g. "Figure 3 Panel 2".
func (r Region) Label() string {
	switch r.Kind {
	case Full:
		return fmt.Sprintf("Figure %d (Full)", r.FigureNumber)
	case Panel:
		return fmt.Sprintf("Figure %d Panel %d", r.FigureNumber, r.PanelNumber)
	}
	return fmt.Sprintf("Figure %d", r.FigureNumber)
}

// State is the complete state of an annotation session on one document.
// Transitions take a State by value and return a new one.
type State struct {
	// NextFigure is the number the next Single or Full region receives.
	NextFigure int `json:"next_figure_number"`

	Mode Mode `json:"mode"`

	// OpenFigure is the figure accepting panels, 0 when none is open.
	OpenFigure int `json:"open_figure_number,omitempty"`

	// PanelCount is the number of panels committed to OpenFigure.
	PanelCount int `json:"panel_counter"`

	Phase   Phase          `json:"phase"`
	Anchor  geometry.Point `json:"-"`
	Pending geometry.Rect  `json:"pending_rect"`

	Page      int           `json:"page"`
	PageCount int           `json:"page_count"`
	Surface   geometry.Size `json:"surface"`

	Regions []Region `json:"regions"`
}

// New returns the initial state for a freshly loaded document.
func New(pageCount int, surface geometry.Size) State {
	return State{
		NextFigure: 1,
		Mode:       Simple,
		PageCount:  pageCount,
		Surface:    surface,
	}
}

// HasPending reports whether a selection rectangle exists.
func (s State) HasPending() bool {
	return s.Phase != Idle
}
