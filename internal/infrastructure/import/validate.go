package csvimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Options bound a validation run
type Options struct {
	// MaxRows rejects files with more data rows; 0 means 5000
	MaxRows int
	// MaxErrors caps the retained row errors; 0 means 100
	MaxErrors int
}

// Result is the outcome of validating a file
type Result struct {
	// Valid are the rows that passed every rule, in file order
	Valid       []*Row
	TotalRows   int
	InvalidRows int
	Errors      *ErrorCollection
}

// Validate parses r and checks every non-empty row against rules. File level
// problems return an error; row level problems are collected in the result.
func Validate(ctx context.Context, r io.Reader, rules []FieldRule, opts Options) (*Result, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 5000
	}

	parser, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ReadHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingColumns(RequiredColumns(rules)); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrInvalidHeader, strings.Join(missing, ", "))
	}

	validator := NewValidator(rules, opts.MaxErrors)
	result := &Result{Errors: validator.Errors()}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := parser.Next()
		if err == io.EOF {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			result.TotalRows++
			result.InvalidRows++
			result.Errors.Add(*rowErr)
			continue
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}

		result.TotalRows++
		if result.TotalRows > opts.MaxRows {
			return nil, fmt.Errorf("%w (%d)", ErrTooManyRows, opts.MaxRows)
		}

		if validator.ValidateRow(row) {
			result.Valid = append(result.Valid, row)
		} else {
			result.InvalidRows++
		}
	}

	return result, nil
}
