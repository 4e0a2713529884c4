package searcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// twentyThousandLeagues is an excerpt with a word hyphenated across lines 8 and 9
func twentyThousandLeagues() types.Corpus {
	return types.Corpus{
		{
			Title: "Twenty Thousand Leagues Under the Sea",
			ISBN:  "9780000528531",
			Content: []types.Line{
				{Page: 31, Line: 8, Text: "now simply went on by her own momentum.  The dark-"},
				{Page: 31, Line: 9, Text: "ness was then profound; and however good the Canadian's"},
				{Page: 31, Line: 10, Text: "eyes were, I asked myself how he had managed to see, and"},
			},
		},
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		corpus types.Corpus
		want   []types.Match
	}{
		{
			name:   "lowercase the only matches line 9",
			term:   "the",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{{ISBN: "9780000528531", Page: 31, Line: 9}},
		},
		{
			name: "book with empty content",
			term: "search",
			corpus: types.Corpus{
				{Title: "A Tale of Two Cities", ISBN: "9780140433319", Content: []types.Line{}},
			},
			want: []types.Match{},
		},
		{
			name: "book with nil content",
			term: "search",
			corpus: types.Corpus{
				{Title: "A Tale of Two Cities", ISBN: "9780140433319"},
			},
			want: []types.Match{},
		},
		{
			name: "case mismatch",
			term: "queried",
			corpus: types.Corpus{
				{ISBN: "9780140433319", Content: []types.Line{
					{Page: 1, Line: 1, Text: "the Queried string lives here"},
				}},
			},
			want: []types.Match{},
		},
		{
			name: "multiple matches in one book",
			term: "match",
			corpus: types.Corpus{
				{ISBN: "9780140433319", Content: []types.Line{
					{Page: 1, Line: 1, Text: "the match"},
					{Page: 2, Line: 12, Text: "another match"},
					{Page: 2, Line: 12, Text: "misc line that should not return"},
				}},
			},
			want: []types.Match{
				{ISBN: "9780140433319", Page: 1, Line: 1},
				{ISBN: "9780140433319", Page: 2, Line: 12},
			},
		},
		{
			name: "matches across books keep book then line order",
			term: "match",
			corpus: types.Corpus{
				{ISBN: "9780140433319", Content: []types.Line{
					{Page: 1, Line: 18, Text: "the match"},
					{Page: 2, Line: 12, Text: "misc line that should not return"},
				}},
				{ISBN: "9781335017536", Content: []types.Line{
					{Page: 3, Line: 8, Text: "this is not a hit"},
					{Page: 23, Line: 4, Text: "this line matches"},
				}},
			},
			want: []types.Match{
				{ISBN: "9780140433319", Page: 1, Line: 18},
				{ISBN: "9781335017536", Page: 23, Line: 4},
			},
		},
		{
			name:   "term not present",
			term:   "missing string",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{},
		},
		{
			name:   "hyphenated word is not joined across lines",
			term:   "darkness",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{},
		},
		{
			name:   "hyphenated form spanning a line break does not match",
			term:   "dark-ness",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{},
		},
		{
			name:   "fragment before the break matches its own line",
			term:   "dark-",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{{ISBN: "9780000528531", Page: 31, Line: 8}},
		},
		{
			name:   "substring inside a word",
			term:   "profound;",
			corpus: twentyThousandLeagues(),
			want:   []types.Match{{ISBN: "9780000528531", Page: 31, Line: 9}},
		},
		{
			name:   "empty corpus",
			term:   "the",
			corpus: types.Corpus{},
			want:   []types.Match{},
		},
		{
			name:   "nil corpus",
			term:   "the",
			corpus: nil,
			want:   []types.Match{},
		},
		{
			name: "empty text never matches a non-empty term",
			term: "a",
			corpus: types.Corpus{
				{ISBN: "1", Content: []types.Line{{Page: 1, Line: 1, Text: ""}}},
			},
			want: []types.Match{},
		},
		{
			name: "duplicate ISBNs are reported as-is",
			term: "x",
			corpus: types.Corpus{
				{ISBN: "dup", Content: []types.Line{{Page: 1, Line: 1, Text: "x"}}},
				{ISBN: "dup", Content: []types.Line{{Page: 1, Line: 1, Text: "x"}}},
			},
			want: []types.Match{
				{ISBN: "dup", Page: 1, Line: 1},
				{ISBN: "dup", Page: 1, Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(tt.term, tt.corpus)

			assert.Equal(t, tt.term, got.SearchTerm)
			require.NotNil(t, got.Results)
			assert.Equal(t, tt.want, got.Results)
		})
	}
}

func TestSearch_EmptyTermMatchesEveryLine(t *testing.T) {
	corpus := twentyThousandLeagues()
	corpus = append(corpus, types.Book{ISBN: "empty"}, types.Book{
		ISBN:    "9781335017536",
		Content: []types.Line{{Page: 1, Line: 1, Text: ""}},
	})

	got := Search("", corpus)

	assert.Len(t, got.Results, corpus.TotalLines())
	assert.Equal(t, "9780000528531", got.Results[0].ISBN)
	assert.Equal(t, types.Match{ISBN: "9781335017536", Page: 1, Line: 1}, got.Results[3])
}

func TestSearch_TermEchoedVerbatim(t *testing.T) {
	tests := []struct {
		term string
		want []types.Match
	}{
		// Line 8 holds two spaces before "The"
		{"  The ", []types.Match{{ISBN: "9780000528531", Page: 31, Line: 8}}},
		{"  the  ", []types.Match{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.term), func(t *testing.T) {
			got := Search(tt.term, twentyThousandLeagues())

			assert.Equal(t, tt.term, got.SearchTerm)
			assert.Equal(t, tt.want, got.Results)
		})
	}
}

func TestSearch_DoesNotMutateCorpus(t *testing.T) {
	corpus := twentyThousandLeagues()
	before := twentyThousandLeagues()

	_ = Search("the", corpus)

	assert.Equal(t, before, corpus)
}

func TestSearch_Deterministic(t *testing.T) {
	corpus := twentyThousandLeagues()

	first := Search("e", corpus)
	second := Search("e", corpus)

	assert.Equal(t, first, second)
	assert.Len(t, first.Results, 3)
}
