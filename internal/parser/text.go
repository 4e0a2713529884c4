package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// Plain text dumps hold one book. An optional header of "Key: value" lines
// (ISBN, Title, Page) ends at the first blank line. Pages are separated by
// form feeds and lines are numbered from 1 on every page.

const pageBreak = "\f"

type textHeader struct {
	isbn      string
	title     string
	firstPage int
}

func parseText(content []byte, defaultISBN string) (types.Corpus, error) {
	lines := strings.Split(string(content), "\n")

	header := textHeader{isbn: defaultISBN, firstPage: 1}
	bodyStart, err := header.parse(lines)
	if err != nil {
		return nil, err
	}

	if header.isbn == "" {
		return nil, fmt.Errorf("book 0: %w", types.ErrMissingISBN)
	}

	book := types.Book{
		Title:   header.title,
		ISBN:    header.isbn,
		Content: []types.Line{},
	}

	body := strings.Join(lines[bodyStart:], "\n")
	if body == "" {
		return types.Corpus{book}, nil
	}

	for i, page := range strings.Split(body, pageBreak) {
		pageLines := strings.Split(page, "\n")
		if pageLines[len(pageLines)-1] == "" {
			pageLines = pageLines[:len(pageLines)-1]
		}
		for j, text := range pageLines {
			book.Content = append(book.Content, types.Line{
				Page: header.firstPage + i,
				Line: j + 1,
				Text: strings.TrimSuffix(text, "\r"),
			})
		}
	}

	return types.Corpus{book}, nil
}

// parse consumes header lines and returns the index of the first body line.
// Without a recognised first line there is no header.
func (h *textHeader) parse(lines []string) (int, error) {
	if len(lines) == 0 {
		return 0, nil
	}
	if _, _, ok := headerField(lines[0]); !ok {
		return 0, nil
	}

	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			return i + 1, nil
		}

		key, value, ok := headerField(line)
		if !ok {
			return 0, fmt.Errorf("%w: malformed header line %d: %q", types.ErrInvalidInput, i+1, line)
		}

		switch key {
		case "isbn":
			// An empty value keeps the default ISBN
			if value != "" {
				h.isbn = value
			}
		case "title":
			h.title = value
		case "page":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return 0, fmt.Errorf("header line %d: %w", i+1, types.ErrInvalidPage)
			}
			h.firstPage = n
		}
	}

	// Header only, no body
	return len(lines), nil
}

func headerField(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(strings.TrimSuffix(line, "\r"), ":")
	if !found {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(k))
	switch key {
	case "isbn", "title", "page":
		return key, strings.TrimSpace(v), true
	}
	return "", "", false
}
