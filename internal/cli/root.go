// Package cli implements the booksearch command line: an MCP server over
// stdio plus direct import, search, and corpus management commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/config"
	"github.com/dshills/booksearch-mcp/internal/storage"
)

// app holds state shared by the commands of one invocation
type app struct {
	version    string
	buildTime  string
	configPath string

	cfg    config.Config
	logger *slog.Logger
	store  *storage.SQLiteStorage
}

// Execute builds the command tree and runs it with os.Args
func Execute(ctx context.Context, version, buildTime string) error {
	a := &app{version: version, buildTime: buildTime}
	defer a.close()

	return newRootCmd(a).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booksearch",
		Short: "Exact substring search over scanned books",
		Long: `booksearch finds the book, page, and line of every occurrence of a
search term in a corpus of scanned books.

Matching is exact and case-sensitive. Words hyphenated across a line break
are not joined, so "darkness" does not match "dark-" followed by "ness".

Corpora are imported from JSON, YAML, TOML, or plain text files and stored
in SQLite. The serve command exposes search and import as MCP tools.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (default: environment only)")

	cmd.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newStatusCmd(a),
		newDeleteCmd(a),
		newResetCmd(a),
		newVersionCmd(a),
	)

	return cmd
}

// setup loads configuration and the logger. Storage is opened on demand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = mustMakeLogger(cfg.LogLevel, cmd.ErrOrStderr())
	return nil
}

// openStore opens the configured database once per invocation
func (a *app) openStore() (*storage.SQLiteStorage, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.cfg.EnsureDBDir(); err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.cfg.DBPath, err)
	}
	a.logger.Debug("database opened", "path", a.cfg.DBPath, "driver", storage.DriverName)

	a.store = store
	return store, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
	}
	a.store = nil
}
