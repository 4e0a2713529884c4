package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/importer"
	"github.com/dshills/booksearch-mcp/internal/storage"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported corpora",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			corpora, err := store.ListCorpora(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list corpora: %w", err)
			}

			if asJSON {
				return printJSON(cmd, corpora)
			}

			if len(corpora) == 0 {
				cmd.Println("No corpora imported.")
				return nil
			}

			cmd.Printf("%-24s %8s %10s  %s\n", "NAME", "BOOKS", "LINES", "IMPORTED")
			for _, c := range corpora {
				cmd.Printf("%-24s %8s %10s  %s\n",
					c.Name,
					humanize.Comma(int64(c.TotalBooks)),
					humanize.Comma(int64(c.TotalLines)),
					humanize.Time(c.ImportedAt))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show statistics for an imported corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			corpus, err := store.GetCorpus(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("corpus %q is not imported", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to get corpus: %w", err)
			}

			status, err := store.GetStatus(cmd.Context(), corpus.ID)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			if asJSON {
				return printJSON(cmd, status)
			}

			cmd.Printf("Corpus:      %s\n", corpus.Name)
			cmd.Printf("Revision:    %s\n", corpus.Revision)
			cmd.Printf("Source:      %s\n", corpus.SourcePath)
			cmd.Printf("Imported:    %s (%s)\n", corpus.ImportedAt.Format("2006-01-02 15:04:05"), humanize.Time(corpus.ImportedAt))
			cmd.Printf("Books:       %s (%d empty)\n", humanize.Comma(int64(status.BooksCount)), status.EmptyBooks)
			cmd.Printf("Lines:       %s\n", humanize.Comma(int64(status.LinesCount)))
			cmd.Printf("Database:    %s, schema %s\n", humanize.Bytes(status.DatabaseSize), status.Health.SchemaVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete an imported corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			if err := importer.New(store, a.logger).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			cmd.Printf("Deleted corpus %q\n", args[0])
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func newResetCmd(a *app) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every corpus and recreate the database schema",
		Long: `Rolls back all schema migrations, which drops every imported corpus, and
migrates the empty database back to the current schema. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("reset deletes every corpus; pass --yes to confirm")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}

			a.logger.Info("database reset", "path", a.cfg.DBPath)
			cmd.Printf("Database reset to schema %s\n", storage.CurrentSchemaVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm deleting every corpus")
	return cmd
}
