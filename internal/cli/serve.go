package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/mcp"
	"github.com/dshills/booksearch-mcp/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server. It speaks JSON-RPC over stdio,
so logs go to stderr.

Tools: search_books, import_corpus, list_corpora, get_status, delete_corpus.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "booksearch": {
        "command": "/path/to/booksearch",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(store, mcp.Options{
				CacheSize: a.cfg.CacheSize,
				CacheTTL:  a.cfg.CacheTTL,
				Workers:   a.cfg.Workers,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("booksearch MCP server starting",
				"version", a.version,
				"build_mode", storage.BuildMode,
				"driver", storage.DriverName,
				"db", a.cfg.DBPath)

			if err := server.Serve(ctx); err != nil {
				return err
			}

			a.logger.Info("server stopped")
			return nil
		},
	}
}
