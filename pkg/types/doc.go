// Package types provides shared type definitions for the booksearch MCP server.
//
// This package defines the corpus model (Book, Line, Corpus) and the search
// output model (Match, SearchResult) used across the parser, storage,
// searcher and MCP layers.
//
// # Corpus Model
//
// A Corpus is an ordered list of scanned books. Each book carries an opaque
// ISBN, a display title, and its scanned lines in reading order:
//
//	corpus := types.Corpus{
//	    {
//	        Title: "Twenty Thousand Leagues Under the Sea",
//	        ISBN:  "9780000528531",
//	        Content: []types.Line{
//	            {Page: 31, Line: 8, Text: "now simply went on by her own momentum.  The dark-"},
//	            {Page: 31, Line: 9, Text: "ness was then profound; and however good the Canadian's"},
//	        },
//	    },
//	}
//
// Line text is kept exactly as scanned. Hyphenated words broken across a
// line boundary stay broken; nothing in this module joins lines.
//
// # Search Results
//
// SearchResult echoes the searched term and lists every matching line as a
// Match in corpus order:
//
//	{"SearchTerm": "the", "Results": [{"ISBN": "9780000528531", "Page": 31, "Line": 9}]}
//
// Results is always non-nil; an empty search serializes as "Results": [].
//
// # Validation
//
// Required fields are checked where corpora enter the system. Validation
// errors wrap ErrInvalidInput:
//
//	if err := corpus.Validate(); errors.Is(err, types.ErrInvalidInput) {
//	    // reject the corpus
//	}
package types
