package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/face-detect-mcp/internal/view"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server handles MCP protocol communication
type Server struct {
	machine *view.Machine
	log     *logrus.Entry
	version string

	// ctx is the Serve context, used by tools that start background work.
	ctx context.Context

	writeMu sync.Mutex
	encoder *json.Encoder

	// notify is set once the client has acknowledged initialization.
	notifyMu    sync.Mutex
	notify      bool
	unsubscribe func()
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server exposing machine as MCP tools.
func New(machine *view.Machine, version string, log logrus.FieldLogger) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{
		machine: machine,
		version: version,
		log:     log.WithField("component", "server"),
		ctx:     context.Background(),
	}
}

// Run serves on stdin and stdout until stdin closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses
// to w. It returns when r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.ctx = ctx
	s.writeMu.Lock()
	s.encoder = json.NewEncoder(w)
	s.writeMu.Unlock()
	defer s.stopNotifications()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := s.write(resp); err != nil {
				s.log.WithError(err).Error("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanner error")
	}
	return nil
}

func (s *Server) write(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.encoder == nil {
		return errors.New("server is not serving")
	}
	return s.encoder.Encode(v)
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.WithFields(logrus.Fields{"method": req.Method, "id": req.ID}).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		s.startNotifications()
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "face-detect-mcp",
				"version": s.version,
			},
		},
	}
}

// startNotifications forwards every workspace change to the client as a
// notifications/message carrying the status result.
func (s *Server) startNotifications() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if s.notify {
		return
	}
	s.notify = true
	s.unsubscribe = s.machine.Subscribe(func(snap view.Snapshot) {
		note := &MCPNotification{
			JSONRPC: "2.0",
			Method:  "notifications/message",
			Params: map[string]interface{}{
				"level":  "info",
				"logger": "face-detect-mcp",
				"data":   s.status(snap, false),
			},
		}
		if err := s.write(note); err != nil {
			s.log.WithError(err).Warn("failed to send state notification")
		}
	})
}

func (s *Server) stopNotifications() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.notify = false
}
