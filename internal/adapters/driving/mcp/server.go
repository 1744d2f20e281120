package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported when no build version is supplied.
const Version = "0.1.0"

// shutdownTimeout bounds how long RunHTTP waits for in-flight tool calls.
const shutdownTimeout = 5 * time.Second

// Server exposes the mail operations of one sender over MCP.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	version string
	logger  *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithVersion sets the version advertised to clients.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithLogger sets the logger used for transport events.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates an MCP server bound to ports.
func NewServer(ports *Ports, opts ...ServerOption) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingMailService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:   ports,
		version: Version,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	impl := &mcp.Implementation{
		Name:    "graphmail",
		Version: s.version,
	}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: instructions(ports),
	})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells clients which mailbox they act as.
func instructions(ports *Ports) string {
	var b strings.Builder
	sender := ports.Mail.Sender()
	if sender.Name != "" {
		fmt.Fprintf(&b, "Mail is sent as %s <%s>.", sender.Name, sender.Address)
	} else {
		fmt.Fprintf(&b, "Mail is sent as %s.", sender.Address)
	}
	b.WriteString(" list_messages, delete_message and get_mail_folder default to that mailbox.")
	if ports.Auth != nil {
		b.WriteString(" Call check_auth first if a tool reports an authentication error.")
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("mcp server starting", "transport", "stdio", "version", s.version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("mcp http shutdown", "error", err)
		}
	}()

	s.logger.Debug("mcp server starting", "transport", "http", "addr", addr, "version", s.version)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
