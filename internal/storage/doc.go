// Package storage provides SQLite-based persistence for imported book corpora.
//
// The storage layer manages:
//   - Corpus metadata (name, revision, source path, totals)
//   - Books in their import order
//   - Scanned lines in their original order within each book
//
// # Database Schema
//
// Tables:
//   - corpora: one row per named corpus; revision changes on every import
//   - books: ISBN and title, ordered by position within a corpus
//   - lines: page, line number and text, ordered by position within a book
//
// Deleting a corpus cascades to its books and lines.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.booksearch/corpora.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	corpus, err := store.GetCorpus(ctx, "classics")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // not imported yet
//	}
//	books, err := store.LoadCorpus(ctx, corpus.ID)
//
// # Transactions
//
// Re-imports replace books and update totals atomically:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	n, err := tx.ReplaceBooks(ctx, corpus.ID, books)
//	corpus.TotalLines = n
//	err = tx.UpdateCorpus(ctx, corpus)
//
//	return tx.Commit()
//
// Transactions do not nest; BeginTx on a Tx returns ErrNestedTx.
//
// # Drivers
//
// The default build uses the pure Go modernc.org/sqlite driver. Building with
// the sqlite_cgo tag switches to mattn/go-sqlite3. DriverName and BuildMode
// report which one is linked.
package storage
