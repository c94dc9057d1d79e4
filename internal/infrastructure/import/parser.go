// Package csvimport reads and validates CSV uploads row by row.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const encodingSampleSize = 4096

// Parser reads a CSV file with a header row. Column names are matched
// case-insensitively.
type Parser struct {
	reader  *csv.Reader
	headers []string
	index   map[string]int
	line    int
}

// ParserOption configures a Parser
type ParserOption func(*csv.Reader)

// WithDelimiter sets the field separator
func WithDelimiter(d rune) ParserOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// NewParser strips a UTF-8 BOM and rejects input that is empty or not UTF-8
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	buf := bufio.NewReader(r)

	bom, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	sample, err := buf.Peek(encodingSampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(sample))) == 0 {
		return nil, ErrEmptyFile
	}
	if !validUTF8Prefix(sample) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(buf)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(reader)
	}

	return &Parser{reader: reader, index: make(map[string]int)}, nil
}

// validUTF8Prefix ignores a rune cut off at the end of the sample
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// ReadHeader reads the first row as column names
func (p *Parser) ReadHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := p.index[name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidHeader, name)
		}
		p.headers[i] = name
		p.index[name] = i
	}
	if len(p.index) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// Headers returns the normalized column names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// HasColumn reports whether the header contains name
func (p *Parser) HasColumn(name string) bool {
	_, ok := p.index[strings.ToLower(name)]
	return ok
}

// MissingColumns returns the names in required absent from the header
func (p *Parser) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !p.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is one data row keyed by column name
type Row struct {
	// Line is the 1-based line in the file; the header is line 1
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of a column, empty when absent
func (r *Row) Get(column string) string {
	return r.Values[column]
}

// IsEmpty reports whether every value is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next row or io.EOF. Blank lines are skipped. A malformed
// row returns a *RowError and the parser stays usable.
func (p *Parser) Next() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		line := p.line + 1
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			line = pe.StartLine
		}
		p.line = line
		return nil, &RowError{Row: line, Code: CodeMalformedRow, Message: err.Error()}
	}
	p.line, _ = p.reader.FieldPos(0)

	row := &Row{Line: p.line, Values: make(map[string]string, len(p.index))}
	for name, i := range p.index {
		if i < len(record) {
			row.Values[name] = strings.TrimSpace(record[i])
		} else {
			row.Values[name] = ""
		}
	}
	return row, nil
}
