package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ironsheep/figure-extractor/internal/detection"
	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/export"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/session"
)

// DefaultDisplayDPI is the resolution pages are shown and annotated at.
const DefaultDisplayDPI = 150.0

// Options configures a Server.
type Options struct {
	// Renderer is the open document. It is wrapped in a render cache.
	Renderer document.Renderer

	// OutputDir receives exported figures and the manifest.
	OutputDir string

	DisplayDPI float64

	// Export settings; Renderer and Logger are filled in by New. Exports
	// render through Renderer directly, not through the display cache.
	Export export.Exporter

	Detection detection.BlockOptions

	Logger  zerolog.Logger
	Version string
}

// Server handles MCP protocol communication for one annotation session.
type Server struct {
	cache      *document.Cache
	session    *session.Session
	exporter   *export.Exporter
	outputDir  string
	displayDPI float64
	detection  detection.BlockOptions
	version    string
	log        zerolog.Logger

	outMu sync.Mutex
	enc   *json.Encoder

	exports sync.WaitGroup
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

// New creates a server and starts a session on the first page of the
// document.
func New(opts Options) (*Server, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("%w: no document", document.ErrInvalidDocument)
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.DisplayDPI <= 0 {
		opts.DisplayDPI = DefaultDisplayDPI
	}
	if opts.Detection.CellSize <= 0 {
		opts.Detection = detection.DefaultBlockOptions()
	}

	s := &Server{
		cache:      document.NewCache(opts.Renderer),
		outputDir:  opts.OutputDir,
		displayDPI: opts.DisplayDPI,
		detection:  opts.Detection,
		version:    opts.Version,
		log:        opts.Logger,
	}

	var surface geometry.Size
	if s.cache.PageCount() > 0 {
		first, err := s.cache.RenderPage(0, s.displayDPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render first page: %w", err)
		}
		surface = first.Size()
	}

	s.session = session.NewSession(s.cache.PageCount(), surface, opts.Logger)
	s.log = opts.Logger.With().Str("session_id", s.session.ID()).Logger()

	// Exports bypass the display cache; the exporter memoizes renders per call.
	exp := opts.Export
	exp.Renderer = opts.Renderer
	exp.Logger = s.log
	s.exporter = &exp

	return s, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes line-delimited requests from r and writes responses and
// notifications to w. It returns when r is exhausted and every export
// started by a request has finished.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.outMu.Lock()
	s.enc = json.NewEncoder(w)
	s.outMu.Unlock()

	s.log.Info().Int("pages", s.cache.PageCount()).Str("output_dir", s.outputDir).Msg("server ready")

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.send(resp)
		}
	}

	s.exports.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// send writes one message. Responses and export notifications come from
// different goroutines and must not interleave.
func (s *Server) send(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()

	if s.enc == nil {
		return
	}
	if err := s.enc.Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
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
	version := s.version
	if version == "" {
		version = "dev"
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "figure-extractor",
				"version": version,
			},
		},
	}
}
