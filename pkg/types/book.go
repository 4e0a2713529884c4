package types

import "fmt"

// Book is a single scanned book in a corpus
type Book struct {
	Title   string `json:"Title" yaml:"Title" toml:"Title"` // Display only, never matched
	ISBN    string `json:"ISBN" yaml:"ISBN" toml:"ISBN"`
	Content []Line `json:"Content" yaml:"Content" toml:"Content"`
}

// Line is one scanned line of a book's content
type Line struct {
	Page int    `json:"Page" yaml:"Page" toml:"Page"` // 1-based
	Line int    `json:"Line" yaml:"Line" toml:"Line"` // Scoped to the book, not unique across pages
	Text string `json:"Text" yaml:"Text" toml:"Text"` // Verbatim, including hyphenation and punctuation
}

// Corpus is the ordered collection of books being searched
type Corpus []Book

// TotalLines returns the number of lines across all books
func (c Corpus) TotalLines() int {
	n := 0
	for i := range c {
		n += len(c[i].Content)
	}
	return n
}

// Validate checks that every book and line carries its required fields
func (c Corpus) Validate() error {
	for i := range c {
		if err := c[i].Validate(); err != nil {
			return fmt.Errorf("book %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the book identity and each of its lines
func (b *Book) Validate() error {
	if b.ISBN == "" {
		return ErrMissingISBN
	}
	for i := range b.Content {
		if err := b.Content[i].Validate(); err != nil {
			return fmt.Errorf("%s line %d: %w", b.ISBN, i, err)
		}
	}
	return nil
}

// Validate checks the line's page number
func (l *Line) Validate() error {
	if l.Page < 1 {
		return ErrInvalidPage
	}
	return nil
}
