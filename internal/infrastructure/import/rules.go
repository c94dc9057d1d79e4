package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column value
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
)

// FieldRule validates one column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	MinValue  *decimal.Decimal
	// Unique rejects a value already seen in an earlier row; comparison ignores case
	Unique bool
	Check  func(value string) error
}

// FieldRuleBuilder builds a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: strings.ToLower(column), Type: TypeString}}
}

// Required rejects blank values
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int expects a whole number
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal expects a decimal number
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// MaxLength limits the value length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Min sets the smallest accepted numeric value
func (b *FieldRuleBuilder) Min(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Unique rejects repeated values within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Check adds a custom check run after the built-in ones
func (b *FieldRuleBuilder) Check(fn func(value string) error) *FieldRuleBuilder {
	b.rule.Check = fn
	return b
}

// Build returns the rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// Validator applies rules to rows and collects the failures
type Validator struct {
	rules  []FieldRule
	seen   map[string]map[string]int
	errors *ErrorCollection
}

// NewValidator checks columns in the order the rules are given
func NewValidator(rules []FieldRule, maxErrors int) *Validator {
	return &Validator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow reports whether every rule passed for row
func (v *Validator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if err := v.validateField(row, rule); err != nil {
			v.errors.Add(*err)
			ok = false
		}
	}
	return ok
}

func (v *Validator) validateField(row *Row, rule FieldRule) *RowError {
	value := row.Get(rule.Column)
	fail := func(code, message string) *RowError {
		return &RowError{Row: row.Line, Column: rule.Column, Code: code, Message: message, Value: value}
	}

	if value == "" {
		if rule.Required {
			return fail(CodeRequired, "value is required")
		}
		return nil
	}

	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return fail(CodeInvalidLength, fmt.Sprintf("must be at most %d characters", rule.MaxLength))
	}

	switch rule.Type {
	case TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fail(CodeInvalidType, "must be a whole number")
		}
		if rule.MinValue != nil && decimal.NewFromInt(n).LessThan(*rule.MinValue) {
			return fail(CodeOutOfRange, "must be at least "+rule.MinValue.String())
		}
	case TypeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fail(CodeInvalidType, "must be a decimal number")
		}
		if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
			return fail(CodeOutOfRange, "must be at least "+rule.MinValue.String())
		}
	}

	if rule.Unique {
		values := v.seen[rule.Column]
		if values == nil {
			values = make(map[string]int)
			v.seen[rule.Column] = values
		}
		key := strings.ToUpper(value)
		if first, dup := values[key]; dup {
			return fail(CodeDuplicateInFile, fmt.Sprintf("duplicate value (first seen in row %d)", first))
		}
		values[key] = row.Line
	}

	if rule.Check != nil {
		if err := rule.Check(value); err != nil {
			return fail(CodeInvalidValue, err.Error())
		}
	}
	return nil
}

// Errors returns the collected failures
func (v *Validator) Errors() *ErrorCollection {
	return v.errors
}

// RequiredColumns lists the columns of required rules
func RequiredColumns(rules []FieldRule) []string {
	var cols []string
	for _, r := range rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}
