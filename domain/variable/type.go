package variable

import (
	"fmt"
	"strings"
)

// Type is the semantic type of a variable. It decides which summary
// statistics apply and whether grouping by the variable needs binning.
type Type string

const (
	TypeUnary    Type = "unary"
	TypeBinary   Type = "binary"
	TypeOrdered  Type = "ordered"
	TypeNumeric  Type = "numeric"
	TypeCategory Type = "category"
)

// ParseType parses a type name case-insensitively
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeUnary, TypeBinary, TypeOrdered, TypeNumeric, TypeCategory:
		return t, nil
	}
	return "", fmt.Errorf("unknown variable type %q", s)
}

// HasMean reports whether a mean is meaningful for the type
func (t Type) HasMean() bool { return t != TypeCategory }

// HasStd reports whether a standard deviation is reported for the type
func (t Type) HasStd() bool {
	return t == TypeBinary || t == TypeOrdered || t == TypeNumeric
}

// HasPercentiles reports whether cell percentiles are reported
func (t Type) HasPercentiles() bool { return t == TypeNumeric }

// HasFrequencies reports whether category frequencies are reported
func (t Type) HasFrequencies() bool {
	return t == TypeCategory || t == TypeBinary || t == TypeOrdered
}

// Binned reports whether grouping by the variable uses quantile bins
func (t Type) Binned() bool { return t == TypeNumeric }
