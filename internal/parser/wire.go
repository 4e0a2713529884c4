package parser

import (
	"fmt"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// Wire types use pointers so that an absent field can be told apart from a
// zero value.

type wireDocument struct {
	Books []wireBook `toml:"Books"`
}

type wireBook struct {
	Title   *string    `json:"Title" yaml:"Title" toml:"Title"`
	ISBN    *string    `json:"ISBN" yaml:"ISBN" toml:"ISBN"`
	Content []wireLine `json:"Content" yaml:"Content" toml:"Content"`
}

type wireLine struct {
	Page *int    `json:"Page" yaml:"Page" toml:"Page"`
	Line *int    `json:"Line" yaml:"Line" toml:"Line"`
	Text *string `json:"Text" yaml:"Text" toml:"Text"`
}

// toCorpus converts decoded books, rejecting missing required fields.
// A missing Content is an empty book.
func toCorpus(books []wireBook) (types.Corpus, error) {
	corpus := make(types.Corpus, 0, len(books))

	for i, wb := range books {
		if wb.ISBN == nil || *wb.ISBN == "" {
			return nil, fmt.Errorf("book %d: %w", i, types.ErrMissingISBN)
		}

		book := types.Book{
			ISBN:    *wb.ISBN,
			Content: make([]types.Line, 0, len(wb.Content)),
		}
		if wb.Title != nil {
			book.Title = *wb.Title
		}

		for j, wl := range wb.Content {
			line, err := wl.toLine()
			if err != nil {
				return nil, fmt.Errorf("book %d (%s) line %d: %w", i, book.ISBN, j, err)
			}
			book.Content = append(book.Content, line)
		}

		corpus = append(corpus, book)
	}

	return corpus, nil
}

func (wl wireLine) toLine() (types.Line, error) {
	switch {
	case wl.Text == nil:
		return types.Line{}, types.ErrMissingText
	case wl.Page == nil:
		return types.Line{}, types.ErrMissingPage
	case wl.Line == nil:
		return types.Line{}, types.ErrMissingLine
	}

	line := types.Line{Page: *wl.Page, Line: *wl.Line, Text: *wl.Text}
	if err := line.Validate(); err != nil {
		return types.Line{}, err
	}
	return line, nil
}
