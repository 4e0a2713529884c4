package types

// Match locates one line whose text contains the search term
type Match struct {
	ISBN string `json:"ISBN"`
	Page int    `json:"Page"`
	Line int    `json:"Line"`
}

// SearchResult is the outcome of a single search over a corpus.
// Results is never nil so that it serializes as an empty array.
type SearchResult struct {
	SearchTerm string  `json:"SearchTerm"`
	Results    []Match `json:"Results"`
}

// NewSearchResult returns an empty result for term
func NewSearchResult(term string) SearchResult {
	return SearchResult{
		SearchTerm: term,
		Results:    make([]Match, 0),
	}
}

// Clone returns a deep copy of the result
func (r SearchResult) Clone() SearchResult {
	out := SearchResult{
		SearchTerm: r.SearchTerm,
		Results:    make([]Match, len(r.Results)),
	}
	copy(out.Results, r.Results)
	return out
}
