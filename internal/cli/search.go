package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/booksearch-mcp/internal/parser"
	"github.com/dshills/booksearch-mcp/internal/searcher"
	"github.com/dshills/booksearch-mcp/pkg/types"
)

type searchOptions struct {
	files  []string
	format string
	name   string
	json   bool
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search a corpus for an exact term",
		Long: `Finds every line containing the term as an exact, case-sensitive
substring. Matches are listed in book order, then line order.

Search either an imported corpus (--name) or corpus files directly (--file).
Use --file - to read a corpus from stdin in the format given by --format.`,
		Example: `  booksearch search --name verne "Canadian's"
  booksearch search --file leagues.json --json the
  cat leagues.yaml | booksearch search --file - --format yaml dark-`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "corpus file to search, repeatable (- reads stdin)")
	cmd.Flags().StringVar(&opts.format, "format", string(parser.FormatJSON), "format of a corpus read from stdin (json, yaml, toml, text)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "name of an imported corpus")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("file", "name")
	cmd.MarkFlagsOneRequired("file", "name")

	return cmd
}

func runSearch(cmd *cobra.Command, a *app, opts *searchOptions, term string) error {
	var resp *searcher.Response

	if opts.name != "" {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		svc := searcher.NewService(store, searcher.Options{
			CacheSize: a.cfg.CacheSize,
			CacheTTL:  a.cfg.CacheTTL,
			Logger:    a.logger,
		})
		resp, err = svc.Search(cmd.Context(), searcher.Request{Term: term, CorpusName: opts.name})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	} else {
		corpus, err := loadCorpusFiles(cmd, opts)
		if err != nil {
			return err
		}
		start := time.Now()
		resp = &searcher.Response{
			Result:       searcher.Search(term, corpus),
			BooksScanned: len(corpus),
			LinesScanned: corpus.TotalLines(),
		}
		resp.Duration = time.Since(start)
	}

	if opts.json {
		return printJSON(cmd, resp.Result)
	}
	outputSearchTable(cmd, resp)
	return nil
}

// loadCorpusFiles parses every --file argument into one corpus, in argument order
func loadCorpusFiles(cmd *cobra.Command, opts *searchOptions) (types.Corpus, error) {
	stdin := 0
	for _, path := range opts.files {
		if path == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, errors.New("--file - may be given only once; stdin can be read a single time")
	}

	p := parser.New()
	corpus := make(types.Corpus, 0)

	for _, path := range opts.files {
		var (
			books types.Corpus
			err   error
		)
		if path == "-" {
			format, ferr := parser.ParseFormat(opts.format)
			if ferr != nil {
				return nil, ferr
			}
			books, err = p.ParseReader(cmd.InOrStdin(), format)
		} else {
			books, err = p.ParseFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		corpus = append(corpus, books...)
	}

	return corpus, nil
}

func outputSearchTable(cmd *cobra.Command, resp *searcher.Response) {
	matches := resp.Result.Results
	if len(matches) == 0 {
		cmd.Printf("No matches for %q.\n", resp.Result.SearchTerm)
	} else {
		cmd.Printf("%-20s %6s %6s\n", "ISBN", "PAGE", "LINE")
		for _, m := range matches {
			cmd.Printf("%-20s %6d %6d\n", m.ISBN, m.Page, m.Line)
		}
		cmd.Println()
	}

	cmd.Printf("%s match(es) in %s lines across %s book(s) (%s)\n",
		humanize.Comma(int64(len(matches))),
		humanize.Comma(int64(resp.LinesScanned)),
		humanize.Comma(int64(resp.BooksScanned)),
		resp.Duration.Round(time.Microsecond))
}
