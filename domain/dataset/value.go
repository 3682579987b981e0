package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the storage kind of a cell value
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is a single dataset cell. It is comparable, so it can key maps;
// NaN is never stored (it becomes a missing value).
type Value struct {
	Kind Kind
	Num  float64
	Text string
}

// missingTokens are the raw strings treated as missing on ingestion
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
}

// Missing returns a missing value
func Missing() Value {
	return Value{Kind: KindMissing}
}

// Number creates a numeric value; NaN is stored as missing
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// Text creates a text value; the empty string is stored as missing
func Text(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Kind: KindText, Text: s}
}

// Parse converts a raw cell string into a Value: missing tokens become
// missing, parseable numbers become numbers, anything else stays text.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if missingTokens[s] {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(s)
}

// IsMissing reports whether the value is missing
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// Float coerces the value to a float. Text that parses as a number is
// accepted; missing values and other text are not.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String returns the display form of the value
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Text
	}
	return ""
}

// Compare orders values: numbers ascending, then text ascending, then
// missing values last.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		return rank(a.Kind) - rank(b.Kind)
	}
	switch a.Kind {
	case KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
	case KindText:
		return strings.Compare(a.Text, b.Text)
	}
	return 0
}

func rank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindText:
		return 1
	}
	return 2
}
