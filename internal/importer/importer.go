package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/booksearch-mcp/internal/parser"
	"github.com/dshills/booksearch-mcp/internal/storage"
	"github.com/dshills/booksearch-mcp/pkg/types"
)

// ErrImportInProgress is returned when another import or delete holds the lock
var ErrImportInProgress = errors.New("import already in progress")

// Importer coordinates the import pipeline: discover -> parse -> store
type Importer struct {
	parser  *parser.Parser
	storage storage.Storage
	logger  *slog.Logger
	lock    ImportLock
}

// Config contains configuration for a single import
type Config struct {
	Workers int  // Number of concurrent parsers (default: runtime.NumCPU())
	Strict  bool // Abort without storing anything if any file fails to parse
}

// Statistics contains statistics about the import operation
type Statistics struct {
	CorpusName    string
	Revision      string
	SourcePath    string
	Created       bool // The corpus did not exist before this import
	FilesParsed   int
	FilesFailed   int
	FilesSkipped  int
	BooksImported int
	LinesImported int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a new Importer instance
func New(store storage.Storage, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		parser:  parser.New(),
		storage: store,
		logger:  logger,
	}
}

// Busy reports whether an import or delete is running
func (imp *Importer) Busy() bool {
	return imp.lock.Held()
}

// Import parses the corpus file or directory at path and stores it as the
// named corpus, replacing any previous content. Books keep file order, then
// their order within each file.
func (imp *Importer) Import(ctx context.Context, name, path string, config *Config) (*Statistics, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: corpus name is required", types.ErrInvalidInput)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: corpus path is required", types.ErrInvalidInput)
	}

	if !imp.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer imp.lock.Release()

	if config == nil {
		config = &Config{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	startTime := time.Now()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	stats := &Statistics{
		CorpusName:    name,
		SourcePath:    absPath,
		ErrorMessages: make([]string, 0),
	}

	files, skipped, err := discoverFiles(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesSkipped = skipped
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no corpus files found in %s", types.ErrInvalidInput, absPath)
	}

	books, err := imp.parseFiles(ctx, files, workers, config.Strict, stats)
	if err != nil {
		return nil, err
	}

	if err := imp.store(ctx, books, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	imp.logger.Info("corpus imported",
		"corpus", name,
		"revision", stats.Revision,
		"files", stats.FilesParsed,
		"failed", stats.FilesFailed,
		"books", stats.BooksImported,
		"lines", stats.LinesImported,
		"duration", stats.Duration)

	return stats, nil
}

// Delete removes the named corpus
func (imp *Importer) Delete(ctx context.Context, name string) error {
	if !imp.lock.TryAcquire() {
		return ErrImportInProgress
	}
	defer imp.lock.Release()

	corpus, err := imp.storage.GetCorpus(ctx, name)
	if err != nil {
		return fmt.Errorf("corpus %q: %w", name, err)
	}
	if err := imp.storage.DeleteCorpus(ctx, corpus.ID); err != nil {
		return fmt.Errorf("failed to delete corpus %q: %w", name, err)
	}

	imp.logger.Info("corpus deleted", "corpus", name)
	return nil
}

// discoverFiles lists the corpus files at root in lexical order. A single
// file must have a supported extension; in directories, hidden entries are
// ignored and unsupported files are counted as skipped.
func discoverFiles(root string) ([]string, int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, err
	}

	if !info.IsDir() {
		if _, err := parser.FormatFromPath(root); err != nil {
			return nil, 0, err
		}
		return []string{root}, 0, nil
	}

	var files []string
	skipped := 0

	// WalkDir visits entries in lexical order
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if !parser.IsSupported(path) {
			skipped++
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, skipped, err
}

// parseFiles parses files concurrently. Results are slotted by file index so
// the merged corpus preserves file order.
func (imp *Importer) parseFiles(ctx context.Context, files []string, workers int, strict bool, stats *Statistics) (types.Corpus, error) {
	semaphore := make(chan struct{}, workers)
	parsed := make([]types.Corpus, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, filePath := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			books, err := imp.parser.ParseFile(filePath)
			if err != nil {
				failures[i] = err
				return nil
			}
			parsed[i] = books
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var firstErr error
	books := make(types.Corpus, 0)
	for i, filePath := range files {
		if err := failures[i]; err != nil {
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			imp.logger.Warn("failed to parse corpus file", "file", filePath, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", filePath, err)
			}
			continue
		}
		stats.FilesParsed++
		books = append(books, parsed[i]...)
	}

	if firstErr != nil && strict {
		return nil, fmt.Errorf("import aborted, %d file(s) failed: %w", stats.FilesFailed, firstErr)
	}
	if stats.FilesParsed == 0 {
		return nil, fmt.Errorf("no corpus file could be parsed: %w", firstErr)
	}

	return books, nil
}

// store replaces the corpus content and metadata in a single transaction
func (imp *Importer) store(ctx context.Context, books types.Corpus, stats *Statistics) error {
	tx, err := imp.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	revision := uuid.New().String()

	corpus, err := tx.GetCorpus(ctx, stats.CorpusName)
	if errors.Is(err, storage.ErrNotFound) {
		corpus = &storage.Corpus{Name: stats.CorpusName, Revision: revision}
		if err := tx.CreateCorpus(ctx, corpus); err != nil {
			return fmt.Errorf("failed to create corpus: %w", err)
		}
		stats.Created = true
	} else if err != nil {
		return fmt.Errorf("failed to get corpus: %w", err)
	}

	lines, err := tx.ReplaceBooks(ctx, corpus.ID, books)
	if err != nil {
		return fmt.Errorf("failed to store books: %w", err)
	}

	corpus.Revision = revision
	corpus.SourcePath = stats.SourcePath
	corpus.TotalBooks = len(books)
	corpus.TotalLines = lines
	corpus.ImportedAt = time.Now().UTC()
	if err := tx.UpdateCorpus(ctx, corpus); err != nil {
		return fmt.Errorf("failed to update corpus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats.Revision = revision
	stats.BooksImported = len(books)
	stats.LinesImported = lines
	return nil
}
