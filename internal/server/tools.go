package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pointSchema is the shared x/y argument pair of pointer tools.
func pointSchema() map[string]interface{} {
	return map[string]interface{}{
		"x": map[string]interface{}{
			"type":        "integer",
			"description": "X coordinate (image pixels unless screen is true)",
		},
		"y": map[string]interface{}{
			"type":        "integer",
			"description": "Y coordinate (image pixels unless screen is true)",
		},
		"screen": map[string]interface{}{
			"type":        "boolean",
			"description": "Interpret x/y as canvas coordinates and map them through the current view. Default false",
			"default":     false,
		},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "editor_load",
			Description: "Load an image file into the editor. Resets undo history, fits the view to the canvas and returns the image state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, BMP, GIF, TIFF or WebP)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_save",
			Description: "Write the working image as PNG with transparency. The PNG format is used regardless of the file extension.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute output path",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_export",
			Description: "Write the working image as PNG with edge softening applied to the exported copy only.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute output path",
					},
					"soften_level": map[string]interface{}{
						"type":        "integer",
						"description": "Edge softening level 0-5 (0 disables). Default 0",
						"minimum":     0,
						"maximum":     5,
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_resize",
			Description: "Resize the image with Lanczos resampling as one undoable edit. Give width, height or both; a missing side keeps the aspect ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "New width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "New height in pixels",
					},
				},
			},
		},
		{
			Name:        "editor_upscale",
			Description: "Upscale the unmodified image. Refused once any edit has been made. Sends notifications/progress when the call carries a progress token.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Model: realesrgan-x2, realesrgan-x4 or realesrgan-x4-anime. Default realesrgan-x4",
						"enum":        []string{"realesrgan-x2", "realesrgan-x4", "realesrgan-x4-anime"},
						"default":     "realesrgan-x4",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Scale factor 1-8. Default is the model's native scale",
					},
				},
			},
		},
		{
			Name:        "editor_info",
			Description: "Report image dimensions, transparency counts, history and view state.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "editor_sample_color",
			Description: "Get the current and original color of a pixel, including alpha and the perceptual (Lab) value used by color removal.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer"},
					"y": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"x", "y"},
			},
		},

		// Tools and strokes
		{
			Name:        "tool_configure",
			Description: "Change the active tool and its settings. Omitted fields keep their value; values are clamped to their ranges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tool": map[string]interface{}{
						"type":        "string",
						"description": "Active tool",
						"enum":        []string{"color_remove", "erase", "repair"},
					},
					"diameter": map[string]interface{}{
						"type":        "integer",
						"description": "Brush diameter 1-200",
					},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Color removal tolerance 0-255",
					},
					"hardness": map[string]interface{}{
						"type":        "number",
						"description": "Eraser hardness 0.0-1.0",
					},
				},
			},
		},
		{
			Name:        "pointer_down",
			Description: "Press the pointer with the active tool. Removes the connected color region for color_remove, or starts a brush stroke.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pointSchema(),
				"required":   []string{"x", "y"},
			},
		},
		{
			Name:        "pointer_move",
			Description: "Move the pointer during a brush stroke, stamping along the path from the previous position.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pointSchema(),
				"required":   []string{"x", "y"},
			},
		},
		{
			Name:        "pointer_up",
			Description: "Release the pointer, completing the brush stroke as one undoable edit.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "editor_stroke",
			Description: "Apply a complete brush stroke through the given points with the erase or repair tool.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Stroke positions in image pixels",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "integer"},
								"y": map[string]interface{}{"type": "integer"},
							},
							"required": []string{"x", "y"},
						},
					},
					"tool": map[string]interface{}{
						"type":        "string",
						"description": "Brush tool for this stroke. Default is the active tool",
						"enum":        []string{"erase", "repair"},
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "editor_select",
			Description: "Remove the connected region of similar color around a seed pixel, bounded by the visible area. Does not change the active tool.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer"},
					"y": map[string]interface{}{"type": "integer"},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Tolerance 0-255 for this selection. Default is the configured tolerance",
					},
				},
				"required": []string{"x", "y"},
			},
		},

		// History
		{
			Name:        "history_undo",
			Description: "Undo the last edit.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_redo",
			Description: "Redo the last undone edit.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_status",
			Description: "Report undo/redo availability, step counts and snapshot memory.",
			InputSchema: emptySchema(),
		},

		// View
		{
			Name:        "view_set",
			Description: "Change pan, zoom or canvas size, then render any newly visible area.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor 0.02-32",
					},
					"pan_x": map[string]interface{}{
						"type":        "number",
						"description": "Screen X of the image origin",
					},
					"pan_y": map[string]interface{}{
						"type":        "number",
						"description": "Screen Y of the image origin",
					},
					"canvas_width":  map[string]interface{}{"type": "integer"},
					"canvas_height": map[string]interface{}{"type": "integer"},
					"action": map[string]interface{}{
						"type":        "string",
						"description": "zoom_in or zoom_out by one step, or wheel_in/wheel_out anchored at anchor_x/anchor_y",
						"enum":        []string{"zoom_in", "zoom_out", "wheel_in", "wheel_out"},
					},
					"anchor_x": map[string]interface{}{"type": "integer"},
					"anchor_y": map[string]interface{}{"type": "integer"},
				},
			},
		},
		{
			Name:        "view_fit",
			Description: "Fit the image to the canvas and center it.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "view_render",
			Description: "Render the visible part of the display as base64 PNG at the current zoom, including the edge softening preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Optional cap on the longer output side in pixels",
					},
				},
			},
		},
		{
			Name:        "editor_edge_soften",
			Description: "Set the live edge softening preview level (0-5). The working image is not changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": map[string]interface{}{
						"type":    "integer",
						"minimum": 0,
						"maximum": 5,
					},
				},
				"required": []string{"level"},
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
