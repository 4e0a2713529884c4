package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// corpusItemSchema describes one book of an inline corpus
var corpusItemSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"Title": map[string]interface{}{"type": "string"},
		"ISBN":  map[string]interface{}{"type": "string"},
		"Content": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"Page": map[string]interface{}{"type": "integer", "minimum": 1},
					"Line": map[string]interface{}{"type": "integer"},
					"Text": map[string]interface{}{"type": "string"},
				},
				"required": []string{"Page", "Line", "Text"},
			},
		},
	},
	"required": []string{"ISBN"},
}

// searchBooksTool returns the tool definition for search_books
func searchBooksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_books",
		Description: "Find every scanned line containing a term (exact, case-sensitive substring). Results are in book order, then line order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"term": map[string]interface{}{
					"type":        "string",
					"description": "Text to look for. Matched literally; an empty term matches every line",
				},
				"corpus": map[string]interface{}{
					"type":        "array",
					"description": "Inline corpus to search. Mutually exclusive with corpus_name",
					"items":       corpusItemSchema,
				},
				"corpus_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of an imported corpus to search. Mutually exclusive with corpus",
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "Reuse cached results for imported corpora",
					"default":     true,
				},
			},
			Required: []string{"term"},
		},
	}
}

// importCorpusTool returns the tool definition for import_corpus
func importCorpusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_corpus",
		Description: "Import corpus files (.json, .yaml, .toml, .txt) from a file or directory under a name, replacing any previous content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Corpus name",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a corpus file or a directory of corpus files",
				},
				"strict": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, abort the import when any file fails to parse",
					"default":     false,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of files parsed concurrently (0 = number of CPUs)",
					"minimum":     0,
				},
			},
			Required: []string{"name", "path"},
		},
	}
}

// listCorporaTool returns the tool definition for list_corpora
func listCorporaTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_corpora",
		Description: "List imported corpora with their revisions and sizes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query import status and statistics for a corpus",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Corpus name",
				},
			},
			Required: []string{"name"},
		},
	}
}

// deleteCorpusTool returns the tool definition for delete_corpus
func deleteCorpusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_corpus",
		Description: "Delete an imported corpus and all of its books",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Corpus name",
				},
			},
			Required: []string{"name"},
		},
	}
}
