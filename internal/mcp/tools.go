package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/dshills/booksearch-mcp/internal/importer"
	"github.com/dshills/booksearch-mcp/internal/parser"
	"github.com/dshills/booksearch-mcp/internal/searcher"
	"github.com/dshills/booksearch-mcp/internal/storage"
	"github.com/dshills/booksearch-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeCorpusNotFound   = -32001 // No corpus imported under that name
	ErrorCodeImportInProgress = -32002 // Another import or delete is already running
	ErrorCodeInvalidCorpus    = -32003 // Corpus data does not match the book/line model
	ErrorCodeMissingTerm      = -32004 // term parameter is absent
)

// maxReportedErrors caps per-file errors echoed in import responses
const maxReportedErrors = 5

// handleSearchBooks handles the search_books tool invocation
func (s *Server) handleSearchBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	// The term may be empty but must be present
	rawTerm, present := args["term"]
	if !present || rawTerm == nil {
		return nil, newMCPError(ErrorCodeMissingTerm, "term parameter is required", map[string]interface{}{
			"param":  "term",
			"reason": "missing",
		})
	}
	term, err := cast.ToStringE(rawTerm)
	if err != nil {
		return nil, invalidParam("term", err)
	}

	corpusName, err := stringArg(args, "corpus_name", "")
	if err != nil {
		return nil, invalidParam("corpus_name", err)
	}
	useCache, err := boolArg(args, "use_cache", true)
	if err != nil {
		return nil, invalidParam("use_cache", err)
	}

	inline, hasInline := args["corpus"]
	hasInline = hasInline && inline != nil
	switch {
	case hasInline && corpusName != "":
		return nil, newMCPError(ErrorCodeInvalidParams, "corpus and corpus_name are mutually exclusive", nil)
	case !hasInline && corpusName == "":
		return nil, newMCPError(ErrorCodeInvalidParams, "one of corpus or corpus_name is required", nil)
	}

	if hasInline {
		books, err := s.decodeInlineCorpus(inline)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidCorpus, "invalid corpus", map[string]interface{}{
				"error": err.Error(),
			})
		}
		resp := s.searcher.SearchInline(term, books)
		return mcp.NewToolResultText(formatJSON(resp.Result)), nil
	}

	resp, err := s.searcher.Search(ctx, searcher.Request{
		Term:       term,
		CorpusName: corpusName,
		UseCache:   useCache,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeCorpusNotFound, "corpus not found", map[string]interface{}{
			"corpus_name": corpusName,
			"message":     "Use import_corpus to import it first.",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(resp.Result)), nil
}

// decodeInlineCorpus re-encodes the decoded JSON argument and runs it
// through the corpus parser so inline corpora get the same validation as files
func (s *Server) decodeInlineCorpus(raw interface{}) (types.Corpus, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	return s.parser.ParseReader(bytes.NewReader(data), parser.FormatJSON)
}

// handleImportCorpus handles the import_corpus tool invocation
func (s *Server) handleImportCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, err := requiredStringArg(args, "name")
	if err != nil {
		return nil, err
	}
	path, err := requiredStringArg(args, "path")
	if err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	strict, err := boolArg(args, "strict", false)
	if err != nil {
		return nil, invalidParam("strict", err)
	}
	workers, err := intArg(args, "workers", s.workers)
	if err != nil || workers < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "workers must be a non-negative integer", map[string]interface{}{
			"param": "workers",
			"value": args["workers"],
		})
	}

	stats, err := s.importer.Import(ctx, name, path, &importer.Config{
		Workers: workers,
		Strict:  strict,
	})
	switch {
	case errors.Is(err, importer.ErrImportInProgress):
		return nil, newMCPError(ErrorCodeImportInProgress, "another import is already running", nil)
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, parser.ErrUnsupportedFormat):
		return nil, newMCPError(ErrorCodeInvalidCorpus, "invalid corpus", map[string]interface{}{
			"error": err.Error(),
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "import failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.searcher.InvalidateCache(ctx, name)

	response := map[string]interface{}{
		"imported":       true,
		"name":           stats.CorpusName,
		"revision":       stats.Revision,
		"created":        stats.Created,
		"files_parsed":   stats.FilesParsed,
		"files_failed":   stats.FilesFailed,
		"files_skipped":  stats.FilesSkipped,
		"books_imported": stats.BooksImported,
		"lines_imported": stats.LinesImported,
		"duration_ms":    stats.Duration.Milliseconds(),
	}

	if errorCount := len(stats.ErrorMessages); errorCount > 0 {
		if errorCount > maxReportedErrors {
			response["errors"] = stats.ErrorMessages[:maxReportedErrors]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListCorpora handles the list_corpora tool invocation
func (s *Server) handleListCorpora(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	corpora, err := s.storage.ListCorpora(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list corpora", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]map[string]interface{}, 0, len(corpora))
	for _, c := range corpora {
		items = append(items, map[string]interface{}{
			"name":        c.Name,
			"revision":    c.Revision,
			"source_path": c.SourcePath,
			"books":       c.TotalBooks,
			"lines":       c.TotalLines,
			"imported_at": formatTime(c.ImportedAt),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"corpora": items,
		"count":   len(items),
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, err := requiredStringArg(args, "name")
	if err != nil {
		return nil, err
	}

	corpus, err := s.storage.GetCorpus(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"imported":           false,
			"name":               name,
			"import_in_progress": s.importer.Busy(),
			"message":            "Corpus not imported. Use import_corpus to import it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get corpus", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, corpus.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"imported":           true,
		"import_in_progress": s.importer.Busy(),
		"corpus": map[string]interface{}{
			"name":        corpus.Name,
			"revision":    corpus.Revision,
			"source_path": corpus.SourcePath,
			"imported_at": formatTime(corpus.ImportedAt),
		},
		"statistics": map[string]interface{}{
			"books_count":   status.BooksCount,
			"lines_count":   status.LinesCount,
			"empty_books":   status.EmptyBooks,
			"database_size": humanize.Bytes(status.DatabaseSize),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"schema_version":      status.Health.SchemaVersion,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteCorpus handles the delete_corpus tool invocation
func (s *Server) handleDeleteCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, err := requiredStringArg(args, "name")
	if err != nil {
		return nil, err
	}

	err = s.importer.Delete(ctx, name)
	switch {
	case errors.Is(err, importer.ErrImportInProgress):
		return nil, newMCPError(ErrorCodeImportInProgress, "an import is running", nil)
	case errors.Is(err, storage.ErrNotFound):
		return nil, newMCPError(ErrorCodeCorpusNotFound, "corpus not found", map[string]interface{}{
			"name": name,
		})
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.searcher.InvalidateCache(ctx, name)

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted": true,
		"name":    name,
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func invalidParam(param string, err error) error {
	return newMCPError(ErrorCodeInvalidParams, "invalid "+param, map[string]interface{}{
		"param":  param,
		"reason": err.Error(),
	})
}

// validatePath checks that a path is absolute and readable
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(out)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// requiredStringArg extracts a non-empty string parameter
func requiredStringArg(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return val, nil
}

// boolArg extracts a boolean parameter, accepting "true"/"false" strings
func boolArg(args map[string]interface{}, key string, defaultValue bool) (bool, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultValue, nil
	}
	return cast.ToBoolE(val)
}

// intArg extracts an integer parameter. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string, defaultValue int) (int, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultValue, nil
	}
	return cast.ToIntE(val)
}

// stringArg extracts a string parameter with a default value
func stringArg(args map[string]interface{}, key string, defaultValue string) (string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultValue, nil
	}
	return cast.ToStringE(val)
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
)
