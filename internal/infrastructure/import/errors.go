package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	CodeRequired        = "REQUIRED"
	CodeInvalidType     = "INVALID_TYPE"
	CodeInvalidLength   = "INVALID_LENGTH"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeDuplicateInFile = "DUPLICATE_IN_FILE"
	CodeMalformedRow    = "MALFORMED_ROW"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeConflict        = "CONFLICT"
)

var (
	// ErrEmptyFile is returned when the upload has no content
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the upload is not UTF-8
	ErrInvalidEncoding = errors.New("CSV file must be UTF-8 encoded")

	// ErrMissingHeader is returned when the upload has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrInvalidHeader is returned for duplicate or missing required columns
	ErrInvalidHeader = errors.New("invalid CSV header")

	// ErrTooManyRows is returned when the upload exceeds the row limit
	ErrTooManyRows = errors.New("CSV file exceeds the maximum number of rows")
)

// RowError describes one problem in one row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors    []RowError
	maxErrors int
	total     int
}

// NewErrorCollection creates a collection; maxErrors <= 0 means 100
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the retained errors in insertion order
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount counts every error, retained or not
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// IsTruncated reports whether errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > len(ec.errors)
}
