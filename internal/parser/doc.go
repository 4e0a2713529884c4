// Package parser decodes corpus files into validated books.
//
// Supported formats, chosen by file extension:
//   - .json: a top-level array of books
//   - .yaml, .yml: a top-level sequence of books
//   - .toml: a [[Books]] array of tables with [[Books.Content]] lines
//   - .txt: a plain text page dump holding a single book
//
// Structured formats share the same keys:
//
//	[
//	  {
//	    "Title": "Twenty Thousand Leagues Under the Sea",
//	    "ISBN": "9780000528531",
//	    "Content": [
//	      {"Page": 31, "Line": 8, "Text": "now simply went on by her own momentum.  The dark-"}
//	    ]
//	  }
//	]
//
// A book without Content is empty. A book without ISBN, or a line without
// Text, Page or Line, is rejected with an error wrapping types.ErrInvalidInput
// that names the offending book and line.
//
// # Text dumps
//
// A text dump may start with a header terminated by a blank line:
//
//	ISBN: 9780000528531
//	Title: Twenty Thousand Leagues Under the Sea
//	Page: 31
//
//	now simply went on by her own momentum.  The dark-
//	ness was then profound; and however good the Canadian's
//
// Form feeds separate pages. Lines are numbered from 1 on every page and
// kept verbatim apart from a trailing carriage return. Without an ISBN
// header the file name stem is used.
//
// # Basic Usage
//
//	p := parser.New()
//	books, err := p.ParseFile("/data/books/leagues.json")
//	if errors.Is(err, types.ErrInvalidInput) {
//	    // fix the corpus file
//	}
package parser
