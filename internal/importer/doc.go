// Package importer loads corpus files into storage.
//
// An import discovers corpus files, parses them concurrently and replaces the
// named corpus in one transaction:
//
//	imp := importer.New(store, logger)
//	stats, err := imp.Import(ctx, "classics", "/data/books", &importer.Config{
//	    Workers: 4,
//	    Strict:  false,
//	})
//	if errors.Is(err, importer.ErrImportInProgress) {
//	    // another import is running
//	}
//
// Directories are walked in lexical order. Hidden entries are ignored and
// files without a supported extension are counted in FilesSkipped. Parsed
// books keep file order, then their order within each file, regardless of
// which worker finished first.
//
// A file that fails to parse is reported in ErrorMessages and left out. With
// Strict set, any failure aborts the import and the stored corpus is left
// untouched. Every successful import assigns a new revision.
package importer
