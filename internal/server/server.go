package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bg-eraser-mcp/internal/config"
	"github.com/ironsheep/bg-eraser-mcp/internal/editor"
	"github.com/ironsheep/bg-eraser-mcp/internal/tools"
	"github.com/ironsheep/bg-eraser-mcp/internal/upscale"
	"github.com/ironsheep/bg-eraser-mcp/internal/viewport"
)

// Server handles MCP protocol communication for one editing session.
type Server struct {
	editor   *editor.Editor
	tools    *tools.Config
	view     *viewport.View
	upscaler upscale.Upscaler

	log     *logrus.Entry
	version string

	out           *json.Encoder
	progressToken interface{}
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

// Options configures a Server.
type Options struct {
	Config config.Config
	Logger *logrus.Logger
	// Upscaler runs editor_upscale. Nil selects the built-in resampler.
	Upscaler upscale.Upscaler
	Version  string
}

// New creates a new MCP server instance with no image loaded.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cfg := opts.Config
	if cfg.CanvasWidth == 0 || cfg.CanvasHeight == 0 {
		cfg = config.Default()
	}
	if opts.Upscaler == nil {
		opts.Upscaler = upscale.Resampler{}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		tools:    tools.NewConfig(),
		view:     viewport.NewView(cfg.CanvasWidth, cfg.CanvasHeight),
		upscaler: opts.Upscaler,
		log:      logger.WithField("component", "server"),
		version:  opts.Version,
	}
	s.editor = editor.New(editor.Options{
		Tools:    s.tools,
		View:     s.view,
		Observer: editor.ObserverFunc(s.onEditorEvent),
		Logger:   logger,
		History:  cfg.HistoryOptions(),
		Cache:    cfg.CacheOptions(),
	})
	s.editor.OnProgress(s.sendProgress)
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited JSON-RPC requests from r until EOF,
// writing responses and notifications to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Path arguments are small, but stroke point lists can be long
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	s.out = json.NewEncoder(w)
	defer func() { s.out = nil }()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("Failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := s.out.Encode(resp); err != nil {
				s.log.WithError(err).Error("Failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// Editor returns the session the server drives.
func (s *Server) Editor() *editor.Editor { return s.editor }

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.WithFields(logrus.Fields{"method": req.Method, "id": req.ID}).Debug("Request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
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
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "bg-eraser-mcp",
				"version": s.version,
			},
		},
	}
}

// sendProgress forwards editor progress as notifications/progress when the
// active call carried a progress token.
func (s *Server) sendProgress(percent int) {
	if s.out == nil || s.progressToken == nil {
		return
	}
	n := MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/progress",
		Params: map[string]interface{}{
			"progressToken": s.progressToken,
			"progress":      percent,
			"total":         100,
		},
	}
	if err := s.out.Encode(n); err != nil {
		s.log.WithError(err).Warn("Failed to send progress")
	}
}

func (s *Server) onEditorEvent(ev editor.Event) {
	s.log.WithField("event", ev.String()).Trace("Editor event")
}
