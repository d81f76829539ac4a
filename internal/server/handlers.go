package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/ironsheep/face-detect-mcp/internal/intake"
	"github.com/ironsheep/face-detect-mcp/internal/overlay"
	"github.com/ironsheep/face-detect-mcp/internal/view"
	"github.com/pkg/errors"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "face_upload", "face_status").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "face_upload":
		return s.handleFaceUpload(args)
	case "face_status":
		return s.handleFaceStatus(args)
	case "face_reset":
		return s.handleFaceReset(args)
	case "face_overlay":
		return s.handleFaceOverlay(args)
	case "face_crop":
		return s.handleFaceCrop(args)
	case "face_placeholder":
		return s.handleFacePlaceholder(args)
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

// unmarshalArgs decodes optional tool arguments; absent arguments leave
// v at its zero value.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Results ===

type imageInfo struct {
	Name        string `json:"name"`
	MIMEType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	Digest      string `json:"digest,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Placeholder bool   `json:"placeholder"`
	DataURI     string `json:"data_uri,omitempty"`
}

type faceResult struct {
	Index      int     `json:"index"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence,omitempty"`
	Color      string  `json:"color"`
}

type statusResult struct {
	State           string                  `json:"state"`
	Status          string                  `json:"status"`
	Generation      uint64                  `json:"generation"`
	Image           *imageInfo              `json:"image,omitempty"`
	Display         *detection.Dimensions   `json:"display,omitempty"`
	FaceCount       int                     `json:"face_count"`
	Faces           []faceResult            `json:"faces"`
	ValidationError *intake.ValidationError `json:"validation_error,omitempty"`
	DetectionError  string                  `json:"detection_error,omitempty"`
}

func newStatusResult(snap view.Snapshot, colorFor func(int) string, includeData bool) *statusResult {
	res := &statusResult{
		State:           snap.State.String(),
		Status:          snap.Status,
		Generation:      snap.Generation,
		FaceCount:       snap.FaceCount(),
		Faces:           make([]faceResult, 0, len(snap.Detections)),
		ValidationError: snap.ValidationError,
	}
	if src := snap.Image; src != nil {
		info := &imageInfo{
			Name:        src.Name,
			MIMEType:    src.MIMEType,
			Size:        src.Size,
			Digest:      src.Digest,
			Placeholder: src.Placeholder,
		}
		if src.Image != nil {
			b := src.Image.Bounds()
			info.Width, info.Height = b.Dx(), b.Dy()
		}
		if includeData {
			info.DataURI = src.DataURI
		}
		res.Image = info
	}
	if !snap.Display.IsZero() {
		d := snap.Display
		res.Display = &d
	}
	for i, r := range snap.Detections {
		res.Faces = append(res.Faces, faceResult{
			Index:      i,
			X1:         r.X1,
			Y1:         r.Y1,
			X2:         r.X2,
			Y2:         r.Y2,
			Width:      r.Width(),
			Height:     r.Height(),
			Confidence: r.Confidence,
			Color:      colorFor(i),
		})
	}
	if snap.DetectionError != nil {
		res.DetectionError = snap.DetectionError.Error()
	}
	return res
}

func (s *Server) status(snap view.Snapshot, includeData bool) *statusResult {
	return newStatusResult(snap, s.machine.BoxColor, includeData)
}

type uploadResult struct {
	Accepted bool `json:"accepted"`
	*statusResult
}

// === Tool Handlers ===

type faceUploadArgs struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Wait     *bool  `json:"wait"`
}

func (s *Server) handleFaceUpload(args json.RawMessage) (interface{}, error) {
	var a faceUploadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	u, err := intake.FromFile(a.Path, a.MIMEType)
	if err != nil {
		return nil, err
	}

	if err := s.machine.Submit(s.ctx, u); err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			return &uploadResult{
				Accepted:     false,
				statusResult: s.status(s.machine.Snapshot(), false),
			}, nil
		}
		return nil, err
	}

	if a.Wait == nil || *a.Wait {
		s.machine.Wait()
	}
	return &uploadResult{
		Accepted:     true,
		statusResult: s.status(s.machine.Snapshot(), false),
	}, nil
}

type faceStatusArgs struct {
	IncludeDataURI bool `json:"include_data_uri"`
}

func (s *Server) handleFaceStatus(args json.RawMessage) (interface{}, error) {
	var a faceStatusArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.status(s.machine.Snapshot(), a.IncludeDataURI), nil
}

func (s *Server) handleFaceReset(args json.RawMessage) (interface{}, error) {
	s.machine.Reset()
	return s.status(s.machine.Snapshot(), false), nil
}

type imageResult struct {
	*overlay.EncodedImage
	Status    string `json:"status"`
	FaceCount int    `json:"face_count"`
}

func (s *Server) handleFaceOverlay(args json.RawMessage) (interface{}, error) {
	encoded, err := s.machine.Composite()
	if err != nil {
		return nil, err
	}
	snap := s.machine.Snapshot()
	return &imageResult{
		EncodedImage: encoded,
		Status:       snap.Status,
		FaceCount:    snap.FaceCount(),
	}, nil
}

type faceCropArgs struct {
	Index int     `json:"index"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleFaceCrop(args json.RawMessage) (interface{}, error) {
	var a faceCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 {
		return nil, errors.Errorf("scale must be positive, got %g", a.Scale)
	}
	return s.machine.CropFace(a.Index, a.Scale)
}

func (s *Server) handleFacePlaceholder(args json.RawMessage) (interface{}, error) {
	return overlay.EncodePNG(intake.Placeholder().Image)
}
