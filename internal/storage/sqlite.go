package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrNestedTx is returned when BeginTx is called on a transaction
	ErrNestedTx = errors.New("nested transactions not supported")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens the database at dbPath and applies pending migrations
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Reset rolls back every applied migration, dropping all corpora, then
// migrates the empty database back to the current schema
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	for range AllMigrations {
		current, err := appliedVersion(ctx, s.db)
		if err != nil {
			return err
		}
		if current.Equal(semver.MustParse("0.0.0")) {
			break
		}
		if err := RollbackMigration(ctx, s.db); err != nil {
			return err
		}
	}

	if err := ApplyMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("failed to re-apply migrations: %w", err)
	}
	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// sqliteTx wraps a SQL transaction. Every operation runs on the transaction
// itself; going through the pooled *sql.DB would block on the single connection.
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Corpus operations

const corpusColumns = `id, name, revision, COALESCE(source_path, ''), total_books, total_lines,
		       imported_at, created_at, updated_at`

func scanCorpus(row interface{ Scan(dest ...interface{}) error }) (*Corpus, error) {
	var c Corpus
	var importedAt sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Revision, &c.SourcePath, &c.TotalBooks, &c.TotalLines,
		&importedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if importedAt.Valid {
		c.ImportedAt = importedAt.Time
	}
	return &c, nil
}

func (s *SQLiteStorage) createCorpusWithQuerier(ctx context.Context, q querier, corpus *Corpus) error {
	if corpus.Name == "" {
		return fmt.Errorf("failed to create corpus: %w: empty name", types.ErrInvalidInput)
	}

	query := `
		INSERT INTO corpora (name, revision, source_path, total_books, total_lines, imported_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	var importedAt sql.NullTime
	if !corpus.ImportedAt.IsZero() {
		importedAt = sql.NullTime{Time: corpus.ImportedAt, Valid: true}
	}

	result, err := q.ExecContext(ctx, query,
		corpus.Name, corpus.Revision, corpus.SourcePath,
		corpus.TotalBooks, corpus.TotalLines, importedAt, now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("corpus %q: %w", corpus.Name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create corpus: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	corpus.ID = id
	corpus.CreatedAt = now
	corpus.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateCorpus(ctx context.Context, corpus *Corpus) error {
	return s.createCorpusWithQuerier(ctx, s.querier(), corpus)
}

func (s *SQLiteStorage) getCorpusWithQuerier(ctx context.Context, q querier, name string) (*Corpus, error) {
	row := q.QueryRowContext(ctx, "SELECT "+corpusColumns+" FROM corpora WHERE name = ?", name)
	corpus, err := scanCorpus(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus %q: %w", name, err)
	}
	return corpus, nil
}

func (s *SQLiteStorage) GetCorpus(ctx context.Context, name string) (*Corpus, error) {
	return s.getCorpusWithQuerier(ctx, s.querier(), name)
}

func (s *SQLiteStorage) getCorpusByIDWithQuerier(ctx context.Context, q querier, corpusID int64) (*Corpus, error) {
	row := q.QueryRowContext(ctx, "SELECT "+corpusColumns+" FROM corpora WHERE id = ?", corpusID)
	corpus, err := scanCorpus(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus %d: %w", corpusID, err)
	}
	return corpus, nil
}

func (s *SQLiteStorage) updateCorpusWithQuerier(ctx context.Context, q querier, corpus *Corpus) error {
	query := `
		UPDATE corpora
		SET revision = ?, source_path = ?, total_books = ?, total_lines = ?,
		    imported_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now().UTC()
	var importedAt sql.NullTime
	if !corpus.ImportedAt.IsZero() {
		importedAt = sql.NullTime{Time: corpus.ImportedAt, Valid: true}
	}

	result, err := q.ExecContext(ctx, query,
		corpus.Revision, corpus.SourcePath, corpus.TotalBooks, corpus.TotalLines,
		importedAt, now, corpus.ID)
	if err != nil {
		return fmt.Errorf("failed to update corpus: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	corpus.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateCorpus(ctx context.Context, corpus *Corpus) error {
	return s.updateCorpusWithQuerier(ctx, s.querier(), corpus)
}

func (s *SQLiteStorage) listCorporaWithQuerier(ctx context.Context, q querier) ([]*Corpus, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+corpusColumns+" FROM corpora ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list corpora: %w", err)
	}
	defer func() { _ = rows.Close() }()

	corpora := make([]*Corpus, 0)
	for rows.Next() {
		corpus, err := scanCorpus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corpus: %w", err)
		}
		corpora = append(corpora, corpus)
	}
	return corpora, rows.Err()
}

func (s *SQLiteStorage) ListCorpora(ctx context.Context) ([]*Corpus, error) {
	return s.listCorporaWithQuerier(ctx, s.querier())
}

func (s *SQLiteStorage) deleteCorpusWithQuerier(ctx context.Context, q querier, corpusID int64) error {
	result, err := q.ExecContext(ctx, "DELETE FROM corpora WHERE id = ?", corpusID)
	if err != nil {
		return fmt.Errorf("failed to delete corpus: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteCorpus(ctx context.Context, corpusID int64) error {
	return s.deleteCorpusWithQuerier(ctx, s.querier(), corpusID)
}

// Book operations

// replaceBooksWithQuerier drops every stored book of the corpus and writes
// books in order. Book and line positions preserve the input order.
func (s *SQLiteStorage) replaceBooksWithQuerier(ctx context.Context, q querier, corpusID int64, books types.Corpus) (int, error) {
	if _, err := q.ExecContext(ctx, "DELETE FROM books WHERE corpus_id = ?", corpusID); err != nil {
		return 0, fmt.Errorf("failed to clear books: %w", err)
	}

	bookStmt, err := q.PrepareContext(ctx,
		"INSERT INTO books (corpus_id, position, isbn, title) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare book insert: %w", err)
	}
	defer func() { _ = bookStmt.Close() }()

	lineStmt, err := q.PrepareContext(ctx,
		"INSERT INTO lines (book_id, position, page, line_no, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer func() { _ = lineStmt.Close() }()

	lineCount := 0
	for i, book := range books {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		result, err := bookStmt.ExecContext(ctx, corpusID, i, book.ISBN, book.Title)
		if err != nil {
			return 0, fmt.Errorf("failed to insert book %s: %w", book.ISBN, err)
		}
		bookID, err := result.LastInsertId()
		if err != nil {
			return 0, err
		}

		for j, line := range book.Content {
			if _, err := lineStmt.ExecContext(ctx, bookID, j, line.Page, line.Line, line.Text); err != nil {
				return 0, fmt.Errorf("failed to insert line %d of book %s: %w", j, book.ISBN, err)
			}
			lineCount++
		}
	}

	return lineCount, nil
}

// ReplaceBooks atomically replaces the books of a corpus
func (s *SQLiteStorage) ReplaceBooks(ctx context.Context, corpusID int64, books types.Corpus) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	n, err := s.replaceBooksWithQuerier(ctx, tx, corpusID, books)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit books: %w", err)
	}
	return n, nil
}

func (s *SQLiteStorage) loadCorpusWithQuerier(ctx context.Context, q querier, corpusID int64) (types.Corpus, error) {
	if _, err := s.getCorpusByIDWithQuerier(ctx, q, corpusID); err != nil {
		return nil, err
	}

	query := `
		SELECT b.id, b.isbn, COALESCE(b.title, ''), l.page, l.line_no, l.text
		FROM books b
		LEFT JOIN lines l ON l.book_id = b.id
		WHERE b.corpus_id = ?
		ORDER BY b.position, l.position
	`
	rows, err := q.QueryContext(ctx, query, corpusID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	books := make(types.Corpus, 0)
	lastBookID := int64(-1)
	for rows.Next() {
		var (
			bookID      int64
			isbn, title string
			page, line  sql.NullInt64
			text        sql.NullString
		)
		if err := rows.Scan(&bookID, &isbn, &title, &page, &line, &text); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}

		if bookID != lastBookID {
			books = append(books, types.Book{Title: title, ISBN: isbn, Content: []types.Line{}})
			lastBookID = bookID
		}

		// Books without lines come back as a single row of NULLs
		if !text.Valid {
			continue
		}
		current := &books[len(books)-1]
		current.Content = append(current.Content, types.Line{
			Page: int(page.Int64),
			Line: int(line.Int64),
			Text: text.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return books, nil
}

// LoadCorpus returns the stored books of a corpus in import order
func (s *SQLiteStorage) LoadCorpus(ctx context.Context, corpusID int64) (types.Corpus, error) {
	return s.loadCorpusWithQuerier(ctx, s.querier(), corpusID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, corpusID int64) (*CorpusStatus, error) {
	corpus, err := s.getCorpusByIDWithQuerier(ctx, q, corpusID)
	if err != nil {
		return nil, err
	}

	status := &CorpusStatus{Corpus: corpus}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM books WHERE corpus_id = ?", corpusID).Scan(&status.BooksCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lines l
		JOIN books b ON l.book_id = b.id
		WHERE b.corpus_id = ?
	`, corpusID).Scan(&status.LinesCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count lines: %w", err)
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM books b
		WHERE b.corpus_id = ?
		  AND NOT EXISTS (SELECT 1 FROM lines l WHERE l.book_id = b.id)
	`, corpusID).Scan(&status.EmptyBooks)
	if err != nil {
		return nil, fmt.Errorf("failed to count empty books: %w", err)
	}

	var pageCount, pageSize int64
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.DatabaseSize = uint64(pageCount * pageSize)
	}

	var version string
	_ = q.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		SchemaVersion:      version,
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, corpusID int64) (*CorpusStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), corpusID)
}

// Transaction implementations

func (t *sqliteTx) CreateCorpus(ctx context.Context, corpus *Corpus) error {
	return t.storage.createCorpusWithQuerier(ctx, t.querier(), corpus)
}

func (t *sqliteTx) GetCorpus(ctx context.Context, name string) (*Corpus, error) {
	return t.storage.getCorpusWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) UpdateCorpus(ctx context.Context, corpus *Corpus) error {
	return t.storage.updateCorpusWithQuerier(ctx, t.querier(), corpus)
}

func (t *sqliteTx) ListCorpora(ctx context.Context) ([]*Corpus, error) {
	return t.storage.listCorporaWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteCorpus(ctx context.Context, corpusID int64) error {
	return t.storage.deleteCorpusWithQuerier(ctx, t.querier(), corpusID)
}

func (t *sqliteTx) ReplaceBooks(ctx context.Context, corpusID int64, books types.Corpus) (int, error) {
	return t.storage.replaceBooksWithQuerier(ctx, t.querier(), corpusID, books)
}

func (t *sqliteTx) LoadCorpus(ctx context.Context, corpusID int64) (types.Corpus, error) {
	return t.storage.loadCorpusWithQuerier(ctx, t.querier(), corpusID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, corpusID int64) (*CorpusStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), corpusID)
}

func (t *sqliteTx) Close() error {
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, ErrNestedTx
}
