// Package mcpserver exposes the services as tools over the Model Context
// Protocol, on stdio by default or SSE when a listen address is configured.
package mcpserver

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/eth-mcp-server/internal/balance"
	"github.com/fleshka4/eth-mcp-server/internal/price"
	"github.com/fleshka4/eth-mcp-server/internal/swap"
)

const (
	serverName    = "eth-mcp-server"
	serverVersion = "1.0.0"
)

// Server wires the tool handlers into an MCP server.
type Server struct {
	mcp     *server.MCPServer
	swap    *swap.Service
	balance *balance.Service
	price   *price.Client
	timeout time.Duration
	log     *zap.Logger
}

// New creates a Server and registers its tools.
func New(swapSvc *swap.Service, balanceSvc *balance.Service, priceClient *price.Client, timeout time.Duration, log *zap.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(false),
		),
		swap:    swapSvc,
		balance: balanceSvc,
		price:   priceClient,
		timeout: timeout,
		log:     log,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving the protocol over stdin/stdout. All logging goes
// to stderr so the protocol stream stays clean.
func (s *Server) ServeStdio() error {
	s.log.Info("serving MCP over stdio")
	return errors.Wrap(server.ServeStdio(s.mcp), "server.ServeStdio")
}

// ServeSSE blocks serving the protocol over HTTP server-sent events.
func (s *Server) ServeSSE(addr string) error {
	s.log.Info("serving MCP over SSE", zap.String("addr", addr))
	return errors.Wrap(server.NewSSEServer(s.mcp).Start(addr), "sse.Start")
}
