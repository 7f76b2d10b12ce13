package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/rstindex/internal/database"
)

const (
	// ServerName is the MCP server name
	ServerName = "rstindex"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBDir is the default location for workspace databases
	DefaultDBDir = "~/.rstindex"
)

// Server wraps the MCP server around one workspace database.
type Server struct {
	mcp *server.MCPServer
	db  *database.Database

	// The database expects one active caller; every handler holds mu.
	mu sync.Mutex
}

// NewServer creates an MCP server over the database described by cfg.
// An empty cfg.Path (without InMemory) resolves to DefaultDBDir.
func NewServer(cfg database.Config) (*Server, error) {
	if !cfg.InMemory {
		path, err := resolveDBPath(cfg.Path)
		if err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp: mcpServer,
		db:  db,
	}
	s.registerTools()

	return s, nil
}

// resolveDBPath expands the default directory and ensures it exists.
func resolveDBPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".rstindex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return filepath.Join(dir, "workspace.db"), nil
}

// Serve runs the MCP server on stdio and blocks until shutdown. The
// database is closed on return so buffered writes are flushed.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.db.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(queryRolesTool(), s.handleQueryRoles)
	s.mcp.AddTool(queryDirectivesTool(), s.handleQueryDirectives)
	s.mcp.AddTool(queryDocumentsTool(), s.handleQueryDocuments)
	s.mcp.AddTool(queryElementsTool(), s.handleQueryElements)
	s.mcp.AddTool(queryLintTool(), s.handleQueryLint)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
