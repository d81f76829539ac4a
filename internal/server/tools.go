package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Workspace
		{
			Name:        "face_upload",
			Description: "Upload a JPEG or PNG image and detect faces in it. Replaces the current image. Rejected files leave the workspace unchanged and report a validation_error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"description": "Optional declared media type. Defaults to the type implied by the file extension",
					},
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Wait for detection to finish before returning. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "face_status",
			Description: "Get the workspace state, status line, displayed image and detected faces in display coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_data_uri": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the displayed image as a data: URI. Default false",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "face_reset",
			Description: "Clear the workspace and show the placeholder image again.",
			InputSchema: noArguments(),
		},

		// Rendering
		{
			Name:        "face_overlay",
			Description: "Render the displayed image with a box drawn around each detected face and return it as base64-encoded PNG.",
			InputSchema: noArguments(),
		},
		{
			Name:        "face_crop",
			Description: "Crop one detected face from the displayed image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "0-based index into the detected faces",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"index"},
			},
		},
		{
			Name:        "face_placeholder",
			Description: "Return the placeholder image shown while no image is loaded, as base64-encoded PNG.",
			InputSchema: noArguments(),
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
