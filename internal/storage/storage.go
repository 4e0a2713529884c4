package storage

import (
	"context"
	"time"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// Storage defines the interface for persisting and loading book corpora
type Storage interface {
	// Corpus operations
	CreateCorpus(ctx context.Context, corpus *Corpus) error
	GetCorpus(ctx context.Context, name string) (*Corpus, error)
	UpdateCorpus(ctx context.Context, corpus *Corpus) error
	ListCorpora(ctx context.Context) ([]*Corpus, error)
	DeleteCorpus(ctx context.Context, corpusID int64) error

	// Book operations
	ReplaceBooks(ctx context.Context, corpusID int64, books types.Corpus) (lineCount int, err error)
	LoadCorpus(ctx context.Context, corpusID int64) (types.Corpus, error)

	// Status operations
	GetStatus(ctx context.Context, corpusID int64) (*CorpusStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Corpus is a named, imported collection of books
type Corpus struct {
	ID         int64
	Name       string
	Revision   string // Changes on every import
	SourcePath string
	TotalBooks int
	TotalLines int
	ImportedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CorpusStatus contains statistics about a stored corpus
type CorpusStatus struct {
	Corpus       *Corpus
	BooksCount   int
	LinesCount   int
	EmptyBooks   int
	DatabaseSize uint64 // Bytes
	Health       HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	SchemaVersion      string
}
