package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aki/gen3talk/internal/core/logger"
	"github.com/aki/gen3talk/internal/ipc"
	"github.com/aki/gen3talk/internal/journal"
	"github.com/aki/gen3talk/internal/rom"
)

// Transports accepted by Start
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// History lists journal entries
type History interface {
	Recent(ctx context.Context, limit int) ([]*journal.Entry, error)
}

// Server is the MCP server
type Server struct {
	mcpServer *server.MCPServer
	mailbox   ipc.Backend
	image     *rom.Image
	history   History
	transport string
	port      int
	version   string
	logger    logger.Logger
}

// Option configures a Server
type Option func(*Server)

// WithROM enables rom_string
func WithROM(image *rom.Image) Option {
	return func(s *Server) {
		s.image = image
	}
}

// WithHistory enables history_recent
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithTransport selects stdio or http; port is used by http only
func WithTransport(transport string, port int) Option {
	return func(s *Server) {
		s.transport = transport
		s.port = port
	}
}

// WithVersion sets the version reported to clients
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates an MCP server over mailbox. mailbox may be nil, in
// which case only the codec and optional tools are offered.
func NewServer(mailbox ipc.Backend, opts ...Option) (*Server, error) {
	s := &Server{
		mailbox:   mailbox,
		transport: TransportStdio,
		version:   "dev",
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		"gen3talk",
		s.version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) registerTools() error {
	if err := s.registerCodecTools(); err != nil {
		return err
	}
	if s.mailbox != nil {
		if err := s.registerMailboxTools(); err != nil {
			return err
		}
	}
	if s.image != nil {
		if err := s.addTool("rom_string", ROMStringParams{}, s.handleROMString); err != nil {
			return err
		}
	}
	if s.history != nil {
		if err := s.addTool("history_recent", HistoryParams{}, s.handleHistoryRecent); err != nil {
			return err
		}
	}
	return nil
}

// addTool registers a tool described by toolDescriptions and params
func (s *Server) addTool(name string, params interface{}, handler server.ToolHandlerFunc) error {
	opts, err := WithStructOptions(GetEnhancedDescription(name), params)
	if err != nil {
		return fmt.Errorf("failed to create %s options: %w", name, err)
	}
	s.mcpServer.AddTool(mcp.NewTool(name, opts...), handler)
	return nil
}

// Start serves until the transport closes or ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	switch s.transport {
	case TransportStdio:
		return server.ServeStdio(s.mcpServer)
	case TransportHTTP:
		return s.startHTTPServer(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", s.transport)
	}
}

// startHTTPServer starts the HTTP/SSE server
func (s *Server) startHTTPServer(ctx context.Context) error {
	if s.port <= 0 {
		return fmt.Errorf("a port is required for the http transport")
	}

	sseServer := server.NewSSEServer(s.mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	s.logger.Info("MCP server listening", "addr", httpServer.Addr, "sse", "/sse", "message", "/message")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
