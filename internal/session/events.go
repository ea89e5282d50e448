package session

import "github.com/ironsheep/figure-extractor/internal/geometry"

// Event is an input to Apply. The host UI surface translates its widget
// callbacks into these values.
type Event interface {
	event()
}

// PointerDown starts a new drag at (X, Y), discarding any previous selection.
type PointerDown struct{ X, Y float64 }

// PointerMove extends the drag to (X, Y).
type PointerMove struct{ X, Y float64 }

// PointerUp finishes the drag at (X, Y).
type PointerUp struct{ X, Y float64 }

// Cancel drops the current selection without side effects.
type Cancel struct{}

// NextPage navigates forward one page.
type NextPage struct{}

// PrevPage navigates back one page.
type PrevPage struct{}

// GotoPage navigates to a zero-based page, clamped to the document.
type GotoPage struct{ Index int }

// SurfaceChanged reports that the current page was re-rendered at a new size.
type SurfaceChanged struct{ Size geometry.Size }

// SetMode switches to the given capture mode.
type SetMode struct{ Mode Mode }

// ToggleMode flips between Simple and Detailed.
type ToggleMode struct{}

// Commit turns the finished selection into a Region.
type Commit struct{ As CommitKind }

func (PointerDown) event()    {}
func (PointerMove) event()    {}
func (PointerUp) event()      {}
func (Cancel) event()         {}
func (NextPage) event()       {}
func (PrevPage) event()       {}
func (GotoPage) event()       {}
func (SurfaceChanged) event() {}
func (SetMode) event()        {}
func (ToggleMode) event()     {}
func (Commit) event()         {}
