// Package mcp implements the Model Context Protocol (MCP) server for booksearch.
//
// The server exposes five tools:
//   - search_books: find every line containing a term
//   - import_corpus: import corpus files under a name
//   - list_corpora: list imported corpora
//   - get_status: statistics for one corpus
//   - delete_corpus: remove a corpus
//
// MCP is JSON-RPC 2.0 over stdio. Logs go to stderr; stdout carries the protocol.
//
// # Tool: search_books
//
// Search an imported corpus:
//
//	{
//	  "name": "search_books",
//	  "arguments": {"term": "the", "corpus_name": "leagues"}
//	}
//
// or an inline corpus:
//
//	{
//	  "name": "search_books",
//	  "arguments": {
//	    "term": "the",
//	    "corpus": [
//	      {
//	        "Title": "Twenty Thousand Leagues Under the Sea",
//	        "ISBN": "9780000528531",
//	        "Content": [
//	          {"Page": 31, "Line": 8, "Text": "now simply went on by her own momentum.  The dark-"},
//	          {"Page": 31, "Line": 9, "Text": "ness was then profound; and however good the Canadian's"}
//	        ]
//	      }
//	    ]
//	  }
//	}
//
// Response:
//
//	{
//	  "SearchTerm": "the",
//	  "Results": [
//	    {"ISBN": "9780000528531", "Page": 31, "Line": 9}
//	  ]
//	}
//
// Results is always an array, empty when nothing matches.
//
// # Tool: import_corpus
//
//	{
//	  "name": "import_corpus",
//	  "arguments": {"name": "leagues", "path": "/data/books", "strict": false}
//	}
//
// The response reports files parsed, failed and skipped, books and lines
// imported, and the new revision. Importing clears the search cache.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "booksearch": {
//	      "command": "/usr/local/bin/booksearch",
//	      "args": ["serve"],
//	      "env": {"BOOKSEARCH_DB_PATH": "/var/lib/booksearch/books.db"}
//	    }
//	  }
//	}
//
// # Error Handling
//
// Handlers return *MCPError values carrying a JSON-RPC style code:
//   - -32602: Invalid params
//   - -32603: Internal error (database, filesystem)
//   - -32001: Corpus not found
//   - -32002: Import in progress
//   - -32003: Invalid corpus (missing ISBN, Text, Page or Line)
//   - -32004: Missing term
package mcp
