// Package mcp exposes support-procedure search and order lookups to AI
// agents over the Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/orderdesk/orderdesk/internal/retriever"
	"github.com/orderdesk/orderdesk/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes assistant tools.
type Server struct {
	retr   *retriever.Retriever
	orders store.Orders
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(retr *retriever.Retriever, orders store.Orders) *Server {
	s := &Server{
		retr:   retr,
		orders: orders,
	}

	s.mcp = server.NewMCPServer(
		"orderdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchProceduresTool, s.handleSearchProcedures)
	s.mcp.AddTool(getOrderStatusTool, s.handleGetOrderStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
