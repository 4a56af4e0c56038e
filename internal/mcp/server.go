package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "pganalyze-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the analysis database
	DefaultDBPath = "~/.pganalyze/corpus.db"
)

// Server wraps the MCP server with the analysis database it queries.
// Tools are read-only: analysis runs are written by the analyze command,
// never through the protocol.
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
}

// NewServer creates a new MCP server instance over an analysis database.
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".pganalyze", "corpus.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(corpusSummaryTool(), s.handleCorpusSummary)
	s.mcp.AddTool(findDuplicatesTool(), s.handleFindDuplicates)
	s.mcp.AddTool(listNeedsReviewTool(), s.handleListNeedsReview)
	s.mcp.AddTool(disciplineBreakdownTool(), s.handleDisciplineBreakdown)
	return nil
}
