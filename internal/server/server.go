package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pixel-pictures-mcp/internal/editor"
	"github.com/ironsheep/pixel-pictures-mcp/internal/pixel"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Server handles MCP protocol communication for one editing session.
type Server struct {
	svc editor.Service
	log logrus.FieldLogger

	// openSource loads pictures for select_source.
	openSource func(path string) (*pixel.Source, error)

	mu      sync.Mutex
	session *editor.Session
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

// New creates a server with a fresh editing session backed by svc.
func New(svc editor.Service, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		svc:        svc,
		log:        log,
		openSource: pixel.OpenSource,
		session:    editor.New(svc, log),
	}
}

// Session returns the current editing session.
func (s *Server) Session() *editor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Server) replaceSession(session *editor.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

// Run serves requests from stdin and writes responses to stdout until
// stdin is closed.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses
// to w.
//
// Tool calls that wait on the picture service run on their own goroutine,
// so their responses may be written after those of later requests. All
// other requests are answered in order. Serve returns once r is exhausted
// and every call in flight has been answered.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Grids and rows arguments can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	var (
		encMu    sync.Mutex
		inFlight sync.WaitGroup
	)
	encoder := json.NewEncoder(w)
	send := func(resp *MCPResponse) {
		if resp == nil {
			return
		}
		encMu.Lock()
		defer encMu.Unlock()
		if err := encoder.Encode(resp); err != nil {
			s.log.WithError(err).Error("failed to encode response")
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		if !waitsOnService(&req) {
			send(s.handleRequest(ctx, &req))
			continue
		}
		inFlight.Add(1)
		go func(req *MCPRequest) {
			defer inFlight.Done()
			send(s.handleRequest(ctx, req))
		}(&req)
	}
	inFlight.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// serviceTools are the tools that issue picture service requests.
var serviceTools = map[string]bool{
	"set_height":    true,
	"set_width":     true,
	"select_source": true,
	"start_drawing": true,
	"save":          true,
	"delete":        true,
	"download":      true,
}

func waitsOnService(req *MCPRequest) bool {
	if req.Method != "tools/call" {
		return false
	}
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return false
	}
	return serviceTools[params.Name]
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
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
				"name":    "pixel-pictures-mcp",
				"version": Version,
			},
		},
	}
}
