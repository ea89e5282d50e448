package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/geometry"
)

var (
	// ErrNoSelection is returned by Commit when no finished selection exists.
	ErrNoSelection = errors.New("no finished selection to commit")

	// ErrNoOpenFigure is returned when a panel is committed with no open figure.
	ErrNoOpenFigure = errors.New("no open figure to add a panel to")

	// ErrWrongMode is returned for a commit action that the mode does not allow.
	ErrWrongMode = errors.New("commit action not allowed in current mode")

	// ErrUnknownEvent is returned for event types Apply does not handle.
	ErrUnknownEvent = errors.New("unknown event")
)

// Outcome describes the side effects of one transition.
type Outcome struct {
	// Region is the region committed by this transition, if any.
	Region *Region

	// ClosedFigure is the open figure a mode switch or full commit closed, 0 if none.
	ClosedFigure int

	// Notice is a user-facing warning, e.g. when a mode switch closes a
	// figure that may still have been expecting panels.
	Notice string
}

// Apply computes the state that follows s after ev. It has no side effects:
// on error the returned state is s unchanged.
func Apply(s State, ev Event) (State, Outcome, error) {
	switch e := ev.(type) {
	case PointerDown:
		s.Phase = Dragging
		s.Anchor = geometry.Point{X: e.X, Y: e.Y}
		s.Pending = geometry.RectFromPoints(s.Anchor, s.Anchor)
		return s, Outcome{}, nil

	case PointerMove:
		if s.Phase == Dragging {
			s.Pending = geometry.RectFromPoints(s.Anchor, geometry.Point{X: e.X, Y: e.Y})
		}
		return s, Outcome{}, nil

	case PointerUp:
		if s.Phase == Dragging {
			s.Pending = geometry.RectFromPoints(s.Anchor, geometry.Point{X: e.X, Y: e.Y})
			s.Phase = Committed
		}
		return s, Outcome{}, nil

	case Cancel:
		return clearPending(s), Outcome{}, nil

	case NextPage:
		return navigate(s, s.Page+1), Outcome{}, nil

	case PrevPage:
		return navigate(s, s.Page-1), Outcome{}, nil

	case GotoPage:
		return navigate(s, e.Index), Outcome{}, nil

	case SurfaceChanged:
		s.Surface = e.Size
		return clearPending(s), Outcome{}, nil

	case SetMode:
		return switchMode(s, e.Mode)

	case ToggleMode:
		if s.Mode == Simple {
			return switchMode(s, Detailed)
		}
		return switchMode(s, Simple)

	case Commit:
		return commit(s, e.As)
	}

	return s, Outcome{}, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
}

// AfterExport returns the state following a fully successful export: the
// committed regions are cleared and any open figure is closed. Figure
// numbering continues from where it was.
func AfterExport(s State) State {
	if s.OpenFigure != 0 {
		s.NextFigure = s.OpenFigure + 1
	}
	s.OpenFigure = 0
	s.PanelCount = 0
	s.Regions = nil
	return s
}

func clearPending(s State) State {
	s.Phase = Idle
	s.Anchor = geometry.Point{}
	s.Pending = geometry.Rect{}
	return s
}

func navigate(s State, target int) State {
	s.Page = document.ClampPage(target, s.PageCount)
	return clearPending(s)
}

// closeOpenFigure advances numbering past the open figure.
func closeOpenFigure(s State) (State, int) {
	closed := s.OpenFigure
	if closed == 0 {
		return s, 0
	}
	s.NextFigure = closed + 1
	s.OpenFigure = 0
	s.PanelCount = 0
	return s, closed
}

func switchMode(s State, m Mode) (State, Outcome, error) {
	if m != Simple && m != Detailed {
		return s, Outcome{}, fmt.Errorf("unknown mode %d", int(m))
	}
	if s.Mode == m {
		return s, Outcome{}, nil
	}

	var out Outcome
	s, out.ClosedFigure = closeOpenFigure(s)
	if out.ClosedFigure != 0 {
		if m == Detailed {
			out.Notice = fmt.Sprintf("figure %d was abandoned; add a new full figure before adding panels", out.ClosedFigure)
		} else {
			out.Notice = fmt.Sprintf("figure %d closed with %d panel(s)", out.ClosedFigure, countPanels(s.Regions, out.ClosedFigure))
		}
	}
	s.Mode = m
	return s, out, nil
}

func commit(s State, as CommitKind) (State, Outcome, error) {
	if s.Phase != Committed {
		return s, Outcome{}, ErrNoSelection
	}

	orig := s
	region := Region{
		Page:    s.Page,
		Rect:    s.Pending,
		Surface: s.Surface,
	}
	var out Outcome

	switch {
	case s.Mode == Simple && as == CommitFigure:
		region.Kind = Single
		region.FigureNumber = s.NextFigure
		s.NextFigure++

	case s.Mode == Detailed && as == CommitFull:
		s, out.ClosedFigure = closeOpenFigure(s)
		region.Kind = Full
		region.FigureNumber = s.NextFigure
		s.OpenFigure = s.NextFigure
		s.PanelCount = 0

	case s.Mode == Detailed && as == CommitPanel:
		if s.OpenFigure == 0 {
			return orig, Outcome{}, ErrNoOpenFigure
		}
		s.PanelCount++
		region.Kind = Panel
		region.FigureNumber = s.OpenFigure
		region.PanelNumber = s.PanelCount

	default:
		return orig, Outcome{}, fmt.Errorf("%w: %s in %s mode", ErrWrongMode, as, s.Mode)
	}

	// Earlier States may share the backing array.
	s.Regions = append(slices.Clip(s.Regions), region)
	s = clearPending(s)
	out.Region = &region
	return s, out, nil
}

func countPanels(regions []Region, figure int) int {
	n := 0
	for _, r := range regions {
		if r.Kind == Panel && r.FigureNumber == figure {
			n++
		}
	}
	return n
}
