package types

import (
	"errors"
	"fmt"
)

// Domain errors for corpus validation
var (
	// ErrInvalidInput is returned when a corpus does not match the data model.
	// All other validation errors wrap it.
	ErrInvalidInput = errors.New("invalid input")

	ErrMissingISBN = fmt.Errorf("%w: book has no ISBN", ErrInvalidInput)
	ErrMissingText = fmt.Errorf("%w: line has no Text", ErrInvalidInput)
	ErrMissingPage = fmt.Errorf("%w: line has no Page", ErrInvalidInput)
	ErrMissingLine = fmt.Errorf("%w: line has no Line number", ErrInvalidInput)
	ErrInvalidPage = fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
)
