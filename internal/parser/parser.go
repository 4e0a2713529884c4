package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/booksearch-mcp/pkg/types"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder
var ErrUnsupportedFormat = errors.New("unsupported corpus format")

// Format identifies a corpus file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatText Format = "text"
)

// extensions maps lowercase file extensions to formats
var extensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".txt":  FormatText,
}

// FormatFromPath returns the format implied by the file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// IsSupported reports whether path has a known corpus extension
func IsSupported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// ParseFormat converts a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Parser decodes corpus files into validated books
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and decodes the corpus at filePath. Plain text dumps
// without an ISBN header take the file name stem as their ISBN.
func (p *Parser) ParseFile(filePath string) (types.Corpus, error) {
	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if format == FormatText {
		stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		return parseText(content, stem)
	}
	return p.decode(content, format)
}

// ParseReader decodes a corpus from r
func (p *Parser) ParseReader(r io.Reader, format Format) (types.Corpus, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	if format == FormatText {
		return parseText(content, "")
	}
	return p.decode(content, format)
}

func (p *Parser) decode(content []byte, format Format) (types.Corpus, error) {
	var books []wireBook

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(content))
		if err := dec.Decode(&books); err != nil {
			return nil, decodeError(format, err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, decodeError(format, errors.New("unexpected data after the top-level array"))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &books); err != nil {
			return nil, decodeError(format, err)
		}
	case FormatTOML:
		var doc wireDocument
		if err := toml.Unmarshal(content, &doc); err != nil {
			return nil, decodeError(format, err)
		}
		books = doc.Books
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return toCorpus(books)
}

func decodeError(format Format, err error) error {
	return fmt.Errorf("%w: failed to decode %s corpus: %v", types.ErrInvalidInput, format, err)
}
