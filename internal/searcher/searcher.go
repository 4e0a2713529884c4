package searcher

import (
	"strings"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// Search returns every line of corpus whose text contains term.
//
// Matching is exact, case-sensitive substring containment on the raw line
// text. Lines are never joined, so a word hyphenated across a line break
// only matches through the fragment present on each line. Matches are
// emitted in book order, then line order. An empty term matches every line.
// The returned Results slice is never nil.
func Search(term string, corpus types.Corpus) types.SearchResult {
	result := types.NewSearchResult(term)

	for _, book := range corpus {
		for _, line := range book.Content {
			if strings.Contains(line.Text, term) {
				result.Results = append(result.Results, types.Match{
					ISBN: book.ISBN,
					Page: line.Page,
					Line: line.Line,
				})
			}
		}
	}

	return result
}
