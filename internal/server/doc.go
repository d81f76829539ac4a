// Package server implements the MCP (Model Context Protocol) server for the
// face detection workspace.
//
// The server exposes one view.Machine through JSON-RPC 2.0 tools. A client
// uploads an image, waits for detection, and reads back the status line,
// the detected face boxes in display coordinates, and the rendered overlay.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - notifications/initialized: Client acknowledgment; enables state notifications
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Workspace:
//   - face_upload: Submit a JPEG or PNG file and detect faces
//   - face_status: Current state, status line, image and faces
//   - face_reset: Return to the placeholder
//
// Rendering:
//   - face_overlay: Displayed image with face boxes drawn on it
//   - face_crop: One detected face, cropped from the displayed image
//   - face_placeholder: The image shown while nothing is loaded
//
// # Notifications
//
// After notifications/initialized, every workspace transition is sent as a
// notifications/message whose data is the same object face_status returns.
// Transitions caused by background decoding and detection are interleaved
// with responses on stdout; each line is one complete JSON message.
//
// # Error Handling
//
// A rejected upload is not a protocol error: face_upload returns
// accepted=false with a validation_error carrying the reason and the
// message to show. Other failures are returned as JSON-RPC error responses:
//   - code: -32000 (tool execution failure), -32602 (invalid params),
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(machine, version, log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
