package session

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ironsheep/figure-extractor/internal/geometry"
)

// ErrExportInFlight is returned when the session is modified while an
// export of its regions is running.
var ErrExportInFlight = errors.New("export in progress")

// Session is a State guarded for concurrent use.
type Session struct {
	id  string
	log zerolog.Logger

	mu        sync.Mutex
	state     State
	exporting bool
}

// NewSession starts a session on a document with pageCount pages whose first
// page is displayed at surface size.
func NewSession(pageCount int, surface geometry.Size, log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:    id,
		log:   log.With().Str("session_id", id).Logger(),
		state: New(pageCount, surface),
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Apply runs ev through the state machine and stores the result.
func (s *Session) Apply(ev Event) (State, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exporting {
		return s.snapshot(), Outcome{}, ErrExportInFlight
	}

	next, out, err := Apply(s.state, ev)
	if err != nil {
		s.log.Debug().Err(err).Str("event", eventName(ev)).Msg("event rejected")
		return s.snapshot(), out, err
	}
	s.state = next

	if out.Region != nil {
		s.log.Info().
			Str("kind", out.Region.Kind.String()).
			Int("figure", out.Region.FigureNumber).
			Int("panel", out.Region.PanelNumber).
			Int("page", out.Region.Page+1).
			Msg("region committed")
	}
	if out.Notice != "" {
		s.log.Warn().Int("figure", out.ClosedFigure).Msg(out.Notice)
	}
	return s.snapshot(), out, nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// BeginExport freezes the session and returns the regions to export.
func (s *Session) BeginExport() ([]Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exporting {
		return nil, ErrExportInFlight
	}
	s.exporting = true
	return slices.Clone(s.state.Regions), nil
}

// EndExport unfreezes the session. On success the exported regions are
// cleared; on failure they are kept so the export can be retried.
func (s *Session) EndExport(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exporting {
		return
	}
	s.exporting = false
	if ok {
		s.state = AfterExport(s.state)
		s.log.Debug().Int("next_figure", s.state.NextFigure).Msg("session cleared after export")
	}
}

// Exporting reports whether an export is in flight.
func (s *Session) Exporting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporting
}

func (s *Session) snapshot() State {
	st := s.state
	st.Regions = slices.Clone(st.Regions)
	return st
}

func eventName(ev Event) string {
	switch e := ev.(type) {
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	case Cancel:
		return "cancel"
	case NextPage:
		return "next_page"
	case PrevPage:
		return "prev_page"
	case GotoPage:
		return "goto_page"
	case SurfaceChanged:
		return "surface_changed"
	case SetMode:
		return "set_mode"
	case ToggleMode:
		return "toggle_mode"
	case Commit:
		return "commit_" + e.As.String()
	}
	return "unknown"
}
