// Package session implements the region-selection state machine of the
// figure annotator.
//
// Apply is a pure transition function from (State, Event) to a new State.
// Pointer events drive the pending rectangle through Idle, Dragging and
// Committed; commit events turn a finished rectangle into a Region.
//
// # Numbering
//
// In Simple mode every commit produces a Single region numbered NextFigure,
// after which NextFigure is incremented. In Detailed mode a Full commit takes
// NextFigure without incrementing it and opens that figure; Panel commits are
// numbered 1..n within the open figure. The figure is closed, and NextFigure
// advanced past it, by the next Full commit, by any mode switch, or by a
// successful export. Figure numbers are therefore strictly increasing and
// never reused within a session.
//
// Session wraps a State for hosts that deliver events from more than one
// goroutine, and blocks mutation while an export of its regions is running.
package session
