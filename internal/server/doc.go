// Package server implements the MCP (Model Context Protocol) server that
// drives a figure extraction session over stdio.
//
// A host UI (or an AI client) renders pages, forwards pointer drags as tool
// calls, classifies the finished selections and finally exports them. The
// server owns one session on one document and translates every tool call
// into a session event, a page render or an export.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Document and navigation:
//   - document_info: Page count, current page, resolutions, mode
//   - page_goto, page_next, page_prev: Navigation (clamped)
//   - page_preview: Current page with regions drawn on it
//
// Selection:
//   - pointer_down, pointer_move, pointer_up: Drag a rectangle
//   - selection_cancel: Drop the pending rectangle
//
// Modes and regions:
//   - mode_set, mode_toggle: Simple or detailed capture
//   - region_commit: Commit as figure, full or panel
//   - regions_list: Committed regions in export order
//   - page_suggest_regions: Candidate rectangles from content detection
//
// Export:
//   - figures_export: Write PNGs and the manifest
//
// # Coordinates
//
// Pointer coordinates are pixels of the page rendered at the display
// resolution, as reported by document_info. Navigating to a page of a
// different size updates the session's surface automatically.
//
// # Exports
//
// figures_export runs in a background goroutine by default. While it runs
// the session rejects every event with session.ErrExportInFlight; when it
// finishes a notifications/export_complete notification is written to
// stdout. Responses and notifications share one encoder guarded by a mutex.
// Serve does not return until running exports have finished.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
package server
