package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/importer"
)

type importOptions struct {
	strict  bool
	workers int
	json    bool
}

func newImportCmd(a *app) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [name] [path]",
		Short: "Import corpus files under a name",
		Long: `Parses a corpus file, or every supported file under a directory, and
stores the books under the given name. Importing an existing name replaces
its content and issues a new revision.

Supported extensions: .json, .yaml, .yml, .toml, .txt. Hidden files and
directories are ignored; other files are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			workers := opts.workers
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			imp := importer.New(store, a.logger)
			stats, err := imp.Import(cmd.Context(), args[0], args[1], &importer.Config{
				Workers: workers,
				Strict:  opts.strict,
			})
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if opts.json {
				return printJSON(cmd, stats)
			}

			verb := "Updated"
			if stats.Created {
				verb = "Created"
			}
			cmd.Printf("%s corpus %q (revision %s)\n", verb, stats.CorpusName, stats.Revision)
			cmd.Printf("  Source:  %s\n", stats.SourcePath)
			cmd.Printf("  Files:   %d parsed, %d failed, %d skipped\n", stats.FilesParsed, stats.FilesFailed, stats.FilesSkipped)
			cmd.Printf("  Books:   %d\n", stats.BooksImported)
			cmd.Printf("  Lines:   %d\n", stats.LinesImported)
			cmd.Printf("  Elapsed: %s\n", stats.Duration.Round(time.Millisecond))
			for _, msg := range stats.ErrorMessages {
				cmd.PrintErrf("  error: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "abort if any file fails to parse")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel parse workers (default: config, 0 = number of CPUs)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output import statistics as JSON")

	return cmd
}
