package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/figure-extractor/internal/detection"
	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/export"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/imaging"
	"github.com/ironsheep/figure-extractor/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pointer_down", "region_commit").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Page previews add a second {"type": "image"} item carrying the PNG.
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": mustMarshalJSON(result),
		},
	}
	if p, ok := result.(*previewResult); ok && p.Image != nil {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     p.Image.ImageBase64,
			"mimeType": p.Image.MimeType,
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Feeds the matching event to the session, or renders/exports
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Document and navigation
	case "document_info":
		return s.handleDocumentInfo()
	case "page_goto":
		return s.handlePageGoto(args)
	case "page_next":
		return s.navigate(session.NextPage{})
	case "page_prev":
		return s.navigate(session.PrevPage{})
	case "page_preview":
		return s.handlePagePreview(args)

	// Selection
	case "pointer_down":
		return s.handlePointer(args, func(x, y float64) session.Event { return session.PointerDown{X: x, Y: y} })
	case "pointer_move":
		return s.handlePointer(args, func(x, y float64) session.Event { return session.PointerMove{X: x, Y: y} })
	case "pointer_up":
		return s.handlePointer(args, func(x, y float64) session.Event { return session.PointerUp{X: x, Y: y} })
	case "selection_cancel":
		return s.apply(session.Cancel{})

	// Modes and regions
	case "mode_set":
		return s.handleModeSet(args)
	case "mode_toggle":
		return s.apply(session.ToggleMode{})
	case "region_commit":
		return s.handleRegionCommit(args)
	case "regions_list":
		return s.handleRegionsList()
	case "page_suggest_regions":
		return s.handleSuggestRegions(args)

	// Export
	case "figures_export":
		return s.handleFiguresExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals optional tool arguments; absent arguments leave v
// at its zero value.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// stateResult is returned by every tool that feeds an event to the session.
type stateResult struct {
	State        session.State   `json:"state"`
	Region       *session.Region `json:"region,omitempty"`
	ClosedFigure int             `json:"closed_figure,omitempty"`
	Notice       string          `json:"notice,omitempty"`
}

func (s *Server) apply(ev session.Event) (*stateResult, error) {
	st, out, err := s.session.Apply(ev)
	if err != nil {
		return nil, err
	}
	return &stateResult{
		State:        st,
		Region:       out.Region,
		ClosedFigure: out.ClosedFigure,
		Notice:       out.Notice,
	}, nil
}

// === Document and navigation handlers ===

type documentInfo struct {
	SessionID  string        `json:"session_id"`
	PageCount  int           `json:"page_count"`
	Page       int           `json:"page"`
	DisplayDPI float64       `json:"display_dpi"`
	ExportDPI  float64       `json:"export_dpi"`
	Surface    geometry.Size `json:"surface"`
	OutputDir  string        `json:"output_dir"`
	Mode       session.Mode  `json:"mode"`
	Exporting  bool          `json:"exporting"`
}

func (s *Server) handleDocumentInfo() (interface{}, error) {
	st := s.session.Snapshot()
	dpi := s.exporter.DPI
	if dpi <= 0 {
		dpi = export.DefaultDPI
	}
	return &documentInfo{
		SessionID:  s.session.ID(),
		PageCount:  st.PageCount,
		Page:       st.Page,
		DisplayDPI: s.displayDPI,
		ExportDPI:  dpi,
		Surface:    st.Surface,
		OutputDir:  s.outputDir,
		Mode:       st.Mode,
		Exporting:  s.session.Exporting(),
	}, nil
}

type pageGotoArgs struct {
	Index int `json:"index"`
}

func (s *Server) handlePageGoto(args json.RawMessage) (interface{}, error) {
	var a pageGotoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.navigate(session.GotoPage{Index: a.Index})
}

// navigate renders the target page of a navigation event and then moves
// the session there, reporting the new page's rendered size so later
// selections map against it. A page that fails to render leaves the session
// where it was.
func (s *Server) navigate(ev session.Event) (interface{}, error) {
	if s.session.Exporting() {
		return nil, session.ErrExportInFlight
	}
	cur := s.session.Snapshot()

	target, _, err := session.Apply(cur, ev)
	if err != nil {
		return nil, err
	}

	var page *document.Page
	if target.PageCount > 0 {
		if page, err = s.cache.RenderPage(target.Page, s.displayDPI); err != nil {
			return nil, err
		}
	}

	res, err := s.apply(ev)
	if err != nil {
		return nil, err
	}
	if page != nil && page.Size() != res.State.Surface {
		if res, err = s.apply(session.SurfaceChanged{Size: page.Size()}); err != nil {
			return nil, err
		}
	}
	if cur.Page != res.State.Page {
		s.cache.Evict(cur.Page)
	}
	return res, nil
}

type pagePreviewArgs struct {
	MaxWidth int `json:"max_width"`
}

type previewResult struct {
	Page    int                   `json:"page"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Scale   float64               `json:"scale"`
	Regions int                   `json:"regions_on_page"`
	Pending *geometry.Rect        `json:"pending_rect,omitempty"`
	Image   *imaging.EncodedImage `json:"-"`
}

func (s *Server) handlePagePreview(args json.RawMessage) (interface{}, error) {
	var a pagePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaxWidth == 0 {
		a.MaxWidth = 1024
	}

	st := s.session.Snapshot()
	page, err := s.cache.RenderPage(st.Page, s.displayDPI)
	if err != nil {
		return nil, err
	}

	preview := imaging.Thumbnail(RenderPreview(page, st), a.MaxWidth)
	encoded, err := imaging.Encode(preview)
	if err != nil {
		return nil, err
	}

	res := &previewResult{
		Page:   st.Page,
		Width:  encoded.Width,
		Height: encoded.Height,
		Scale:  float64(encoded.Width) / page.Size().Width,
		Image:  encoded,
	}
	for _, r := range st.Regions {
		if r.Page == st.Page {
			res.Regions++
		}
	}
	if st.HasPending() {
		pending := st.Pending
		res.Pending = &pending
	}
	return res, nil
}

// === Selection handlers ===

type pointerArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handlePointer(args json.RawMessage, event func(x, y float64) session.Event) (interface{}, error) {
	var a pointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return s.apply(event(a.X, a.Y))
}

// === Mode and region handlers ===

type modeSetArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleModeSet(args json.RawMessage) (interface{}, error) {
	var a modeSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mode, err := session.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	return s.apply(session.SetMode{Mode: mode})
}

type regionCommitArgs struct {
	As string `json:"as"`
}

func (s *Server) handleRegionCommit(args json.RawMessage) (interface{}, error) {
	var a regionCommitArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	as, err := session.ParseCommitKind(a.As)
	if err != nil {
		return nil, err
	}
	return s.apply(session.Commit{As: as})
}

type regionsListResult struct {
	Regions    []session.Region `json:"regions"`
	Count      int              `json:"count"`
	Mode       session.Mode     `json:"mode"`
	NextFigure int              `json:"next_figure_number"`
	OpenFigure int              `json:"open_figure_number,omitempty"`
	PanelCount int              `json:"panel_counter"`
}

func (s *Server) handleRegionsList() (interface{}, error) {
	st := s.session.Snapshot()
	regions := export.Sort(st.Regions)
	return &regionsListResult{
		Regions:    regions,
		Count:      len(regions),
		Mode:       st.Mode,
		NextFigure: st.NextFigure,
		OpenFigure: st.OpenFigure,
		PanelCount: st.PanelCount,
	}, nil
}

type suggestRegionsArgs struct {
	Page        *int `json:"page,omitempty"`
	MaxBlocks   int  `json:"max_blocks"`
	MinArea     int  `json:"min_area"`
	ExcludeText bool `json:"exclude_text"`
}

type suggestRegionsResult struct {
	Page    int               `json:"page"`
	Surface geometry.Size     `json:"surface"`
	Blocks  []detection.Block `json:"blocks"`
	Count   int               `json:"count"`
}

func (s *Server) handleSuggestRegions(args json.RawMessage) (interface{}, error) {
	var a suggestRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	index := s.session.Snapshot().Page
	if a.Page != nil {
		index = *a.Page
	}

	page, err := s.cache.RenderPage(index, s.displayDPI)
	if err != nil {
		return nil, err
	}

	opts := s.detection
	if a.MaxBlocks > 0 {
		opts.MaxBlocks = a.MaxBlocks
	}
	if a.MinArea > 0 {
		opts.MinArea = a.MinArea
	}
	if a.ExcludeText {
		opts.ExcludeText = true
	}

	found, err := detection.DetectBlocks(page.Image, opts)
	if err != nil {
		return nil, err
	}
	return &suggestRegionsResult{
		Page:    index,
		Surface: page.Size(),
		Blocks:  found.Blocks,
		Count:   found.Count,
	}, nil
}

// === Export handlers ===

type figuresExportArgs struct {
	Wait bool `json:"wait"`
}

type exportStarted struct {
	Status  string `json:"status"`
	Regions int    `json:"regions"`
}

// exportComplete is the payload of the notifications/export_complete
// notification and the synchronous export result.
type exportComplete struct {
	OK           bool             `json:"ok"`
	ManifestPath string           `json:"manifest_path,omitempty"`
	Exported     int              `json:"exported"`
	Files        []string         `json:"files"`
	Skipped      []export.Skipped `json:"skipped,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func (s *Server) handleFiguresExport(args json.RawMessage) (interface{}, error) {
	var a figuresExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	regions, err := s.session.BeginExport()
	if err != nil {
		return nil, err
	}

	if a.Wait {
		done := s.runExport(regions)
		if !done.OK {
			return nil, errors.New(done.Error)
		}
		return done, nil
	}

	s.exports.Add(1)
	go func() {
		defer s.exports.Done()
		done := s.runExport(regions)
		s.send(&MCPNotification{
			JSONRPC: "2.0",
			Method:  "notifications/export_complete",
			Params:  done,
		})
	}()

	return &exportStarted{Status: "started", Regions: len(regions)}, nil
}

// runExport writes regions and releases the session's export guard. The
// session is cleared only when the export as a whole succeeded.
func (s *Server) runExport(regions []session.Region) *exportComplete {
	res, err := s.exporter.Export(context.Background(), regions, s.outputDir)
	s.session.EndExport(err == nil)

	if err != nil {
		s.log.Error().Err(err).Int("regions", len(regions)).Msg("export failed")
		return &exportComplete{Error: err.Error(), Files: []string{}}
	}

	done := &exportComplete{
		OK:           true,
		ManifestPath: res.ManifestPath,
		Exported:     len(res.Manifest.Figures),
		Files:        make([]string, 0, len(res.Manifest.Figures)),
		Skipped:      res.Skipped,
	}
	for _, e := range res.Manifest.Figures {
		done.Files = append(done.Files, e.Filename)
	}
	return done
}
