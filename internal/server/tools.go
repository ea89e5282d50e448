package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func pointerSchema(edge string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{
				"type":        "number",
				"description": "X coordinate of the " + edge + " in rendered page pixels",
			},
			"y": map[string]interface{}{
				"type":        "number",
				"description": "Y coordinate of the " + edge + " in rendered page pixels",
			},
		},
		"required": []string{"x", "y"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Document and navigation
		{
			Name:        "document_info",
			Description: "Get the page count, current page, display and export resolution, rendered page size and capture mode of the open document.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "page_goto",
			Description: "Show the page with the given zero-based index. Out-of-range indexes are clamped to the first or last page. Any unfinished selection is discarded; committed regions are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Zero-based page index",
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "page_next",
			Description: "Show the next page (stays on the last page).",
			InputSchema: emptySchema(),
		},
		{
			Name:        "page_prev",
			Description: "Show the previous page (stays on the first page).",
			InputSchema: emptySchema(),
		},
		{
			Name:        "page_preview",
			Description: "Render the current page with committed regions outlined in per-figure colors (single 2px, full 3px, panel 1px) and the pending selection in red. Returns a PNG image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Scale the preview down to at most this width. Coordinates for pointer tools are always in full rendered page pixels. Default 1024",
						"default":     1024,
					},
				},
			},
		},

		// Selection
		{
			Name:        "pointer_down",
			Description: "Start a selection drag at a point on the rendered page.",
			InputSchema: pointerSchema("drag start"),
		},
		{
			Name:        "pointer_move",
			Description: "Move the drag to a point, updating the pending rectangle. Ignored unless a drag is in progress.",
			InputSchema: pointerSchema("current pointer"),
		},
		{
			Name:        "pointer_up",
			Description: "Finish the drag at a point. The rectangle is then ready for region_commit.",
			InputSchema: pointerSchema("drag end"),
		},
		{
			Name:        "selection_cancel",
			Description: "Discard the pending selection without committing anything.",
			InputSchema: emptySchema(),
		},

		// Modes and regions
		{
			Name:        "mode_set",
			Description: "Set the capture mode. Simple commits standalone figures; detailed commits a full figure followed by its numbered panels. Switching closes any figure still open for panels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"simple", "detailed"},
						"description": "Capture mode",
					},
				},
				"required": []string{"mode"},
			},
		},
		{
			Name:        "mode_toggle",
			Description: "Switch between simple and detailed capture mode.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "region_commit",
			Description: "Commit the finished selection as a region. In simple mode use 'figure'. In detailed mode use 'full' to start a new composite figure and 'panel' to add a numbered panel to it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"as": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"figure", "full", "panel"},
						"description": "How to classify the region. Default 'figure'",
						"default":     "figure",
					},
				},
			},
		},
		{
			Name:        "regions_list",
			Description: "List committed regions in export order along with the figure numbering state.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "page_suggest_regions",
			Description: "Find separated blocks of content on a page and return their bounding boxes in rendered page pixels as candidate selections. Nothing is committed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "Zero-based page index. Default is the current page",
					},
					"max_blocks": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of blocks, largest first. Default 0 (no limit)",
						"default":     0,
					},
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum block area in square pixels. Default from configuration",
					},
					"exclude_text": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop blocks that look like paragraphs of running text",
						"default":     false,
					},
				},
			},
		},

		// Export
		{
			Name:        "figures_export",
			Description: "Crop every committed region from its page at export resolution, write figure PNGs and figures_metadata.json to the output directory, and clear the session. Runs in the background and sends notifications/export_complete unless wait is true.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the export result instead of a notification. Default false",
						"default":     false,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
