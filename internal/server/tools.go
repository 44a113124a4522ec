package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "editor_state",
			Description: "Return the session state: phase, dimensions, palette, active color, tags, saved key and whether a sample or drawing exists.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "new_picture",
			Description: "Discard the current session and start a new picture in the sizing phase with the default 30x30 dimensions.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "open_picture",
			Description: "Open a saved picture for modification. The session starts directly in the drawing phase with the record's palette and tags.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Key of the saved picture",
					},
					"image": map[string]interface{}{
						"type":        "array",
						"description": "Picture rows; each cell is [r,g,b] with channels 0-255",
					},
					"palette": map[string]interface{}{
						"type":        "array",
						"description": "Saved palette as [r,g,b] triples; empty means white and black",
					},
					"tags": map[string]interface{}{
						"type":        "array",
						"description": "Saved tags",
					},
					"public": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether the picture is public",
						"default":     false,
					},
				},
				"required": []string{"key", "image"},
			},
		},

		// Sizing
		{
			Name:        "set_height",
			Description: "Set the target height in cells (sizing phase only). With a source picture selected, the picture is resampled; a result superseded by a later change is reported as discarded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"value": map[string]interface{}{
						"type":        "integer",
						"description": "Height in cells (1 or more)",
					},
				},
				"required": []string{"value"},
			},
		},
		{
			Name:        "set_width",
			Description: "Set the target width in cells (sizing phase only). With a source picture selected, the picture is resampled; a result superseded by a later change is reported as discarded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"value": map[string]interface{}{
						"type":        "integer",
						"description": "Width in cells (1 or more)",
					},
				},
				"required": []string{"value"},
			},
		},
		{
			Name:        "select_source",
			Description: "Select a PNG, JPEG or GIF file to convert. The picture is uploaded and sampled at the current dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sample_pick",
			Description: "Add the color of a sample cell to the palette. Ignored while remove mode is on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row index (0-based, top to bottom)",
					},
					"col": map[string]interface{}{
						"type":        "integer",
						"description": "Column index (0-based, left to right)",
					},
				},
				"required": []string{"row", "col"},
			},
		},
		{
			Name:        "start_drawing",
			Description: "Leave the sizing phase. The sample is converted to the palette, or a blank white grid is created when no source was selected. Fires once.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Drawing
		{
			Name:        "pointer_down",
			Description: "Press on a cell: paint it with the active color and start a drag.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row index (0-based)",
					},
					"col": map[string]interface{}{
						"type":        "integer",
						"description": "Column index (0-based)",
					},
				},
				"required": []string{"row", "col"},
			},
		},
		{
			Name:        "pointer_over",
			Description: "Move over a cell. During a drag the cell is painted with the active color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row index (0-based)",
					},
					"col": map[string]interface{}{
						"type":        "integer",
						"description": "Column index (0-based)",
					},
				},
				"required": []string{"row", "col"},
			},
		},
		{
			Name:        "pointer_up",
			Description: "Release the pointer and end the drag. Safe to call without a drag.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "double_click",
			Description: "Reset a cell to white.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"row": map[string]interface{}{
						"type":        "integer",
						"description": "Row index (0-based)",
					},
					"col": map[string]interface{}{
						"type":        "integer",
						"description": "Column index (0-based)",
					},
				},
				"required": []string{"row", "col"},
			},
		},
		{
			Name:        "resize",
			Description: "Replace the drawing with a blank white grid of the given size. The previous contents are discarded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Height in cells",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Width in cells",
					},
				},
				"required": []string{"height", "width"},
			},
		},
		{
			Name:        "grid_rows",
			Description: "Return the cells of the drawing or the sample, row by row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"layer": map[string]interface{}{
						"type":        "string",
						"description": "Which grid: drawing or sample (default drawing)",
						"default":     "drawing",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Cell notation: hex or rgb (default hex)",
						"default":     "hex",
					},
				},
			},
		},
		{
			Name:        "render_png",
			Description: "Render the drawing or the sample as a PNG with square cells, optionally outlined and numbered. Writes to path or returns base64.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"layer": map[string]interface{}{
						"type":        "string",
						"description": "Which grid: drawing or sample (default drawing)",
						"default":     "drawing",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output file; omit to return base64",
					},
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Cell side in pixels (default 20)",
						"default":     20,
					},
					"grid_lines": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline every cell",
						"default":     false,
					},
					"numbers": map[string]interface{}{
						"type":        "boolean",
						"description": "Number rows and columns from 1 in a margin",
						"default":     false,
					},
					"line_color": map[string]interface{}{
						"type":        "string",
						"description": "Line and number color as #rrggbb or rgb(r, g, b) (default black)",
						"default":     "#000000",
					},
				},
			},
		},

		// Palette
		{
			Name:        "palette_add",
			Description: "Add a color to the palette. Ignored while remove mode is on; use palette_click to select it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color as #rrggbb or rgb(r, g, b)",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "palette_click",
			Description: "Click a palette swatch: make it active, or delete it while remove mode is on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Swatch color as #rrggbb or rgb(r, g, b)",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "palette_toggle_remove",
			Description: "Toggle palette remove mode.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pick_color",
			Description: "Set the active color without adding it to the palette.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color as #rrggbb or rgb(r, g, b)",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "palette_nearest",
			Description: "Return the palette color closest to the given color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color as #rrggbb or rgb(r, g, b)",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "dominant_colors",
			Description: "List the most common colors of the sample or the drawing. With add set, they are added to the palette.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"layer": map[string]interface{}{
						"type":        "string",
						"description": "Which grid: sample or drawing (default sample)",
						"default":     "sample",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors (default 5)",
						"default":     5,
					},
					"add": map[string]interface{}{
						"type":        "boolean",
						"description": "Add the colors to the palette",
						"default":     false,
					},
				},
			},
		},

		// Tags and Visibility
		{
			Name:        "tag_add",
			Description: "Add a tag. Whitespace is removed; empty and duplicate tags are ignored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tag": map[string]interface{}{
						"type":        "string",
						"description": "Tag text",
					},
				},
				"required": []string{"tag"},
			},
		},
		{
			Name:        "tag_remove",
			Description: "Remove a tag.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tag": map[string]interface{}{
						"type":        "string",
						"description": "Tag text",
					},
				},
				"required": []string{"tag"},
			},
		},
		{
			Name:        "toggle_public",
			Description: "Toggle whether the picture is public.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Persistence
		{
			Name:        "save",
			Description: "Save the drawing, palette, tags and public flag. The first save creates the picture; later saves update it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "delete",
			Description: "Delete the saved picture. The next save creates a new one.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "download",
			Description: "Request an export render of the saved picture with numbered grid lines. Writes a PNG to path or returns the data URI.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start_row": map[string]interface{}{
						"type":        "integer",
						"description": "Number shown on the first row (default 1)",
						"default":     1,
					},
					"start_col": map[string]interface{}{
						"type":        "integer",
						"description": "Number shown on the first column (default 1)",
						"default":     1,
					},
					"dir_rows": map[string]interface{}{
						"type":        "string",
						"description": "Row numbering direction: tb or bt (default tb)",
						"default":     "tb",
					},
					"dir_cols": map[string]interface{}{
						"type":        "string",
						"description": "Column numbering direction: lr or rl (default lr)",
						"default":     "lr",
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Line and number color (default black)",
						"default":     "#000000",
					},
					"size_cell": map[string]interface{}{
						"type":        "integer",
						"description": "Cell side in pixels (default 20)",
						"default":     20,
					},
					"step": map[string]interface{}{
						"type":        "integer",
						"description": "Label every step-th row and column (default 1)",
						"default":     1,
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output PNG file; omit to return the data URI",
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
