package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/booksearch-mcp/internal/importer"
	"github.com/dshills/booksearch-mcp/internal/parser"
	"github.com/dshills/booksearch-mcp/internal/searcher"
	"github.com/dshills/booksearch-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "booksearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Options configures the services behind the MCP tools
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Workers   int // Default import workers, 0 = runtime.NumCPU()
	Logger    *slog.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	importer *importer.Importer
	searcher *searcher.Service
	parser   *parser.Parser
	workers  int
	logger   *slog.Logger
}

// NewServer creates a new MCP server over store. The caller owns store and
// closes it after Serve returns.
func NewServer(store storage.Storage, opts Options) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		importer: importer.New(store, logger),
		searcher: searcher.NewService(store, searcher.Options{
			CacheSize: opts.CacheSize,
			CacheTTL:  opts.CacheTTL,
			Logger:    logger,
		}),
		parser:  parser.New(),
		workers: opts.Workers,
		logger:  logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve runs the MCP server on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("MCP server ready, listening on stdio", "name", ServerName, "version", ServerVersion)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchBooksTool(), s.handleSearchBooks)
	s.mcp.AddTool(importCorpusTool(), s.handleImportCorpus)
	s.mcp.AddTool(listCorporaTool(), s.handleListCorpora)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(deleteCorpusTool(), s.handleDeleteCorpus)
	return nil
}
