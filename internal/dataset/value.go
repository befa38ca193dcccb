package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	// KindNull marks a missing cell.
	KindNull Kind = iota
	// KindText holds an uninterpreted string.
	KindText
	// KindNumber holds a float64.
	KindNumber
	// KindDate holds a calendar date.
	KindDate
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind Kind
	text string
	num  float64
	date time.Time
}

// Null returns a missing-cell value.
func Null() Value {
	return Value{kind: KindNull}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Date returns a date value.
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: t}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Float returns the numeric payload. The second return is false when
// the value is not a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the date payload. The second return is false when the
// value is not a date.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// String renders the value for display and export. Null renders as the
// empty string, numbers without trailing zeros, dates as 2006-01-02.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format("2006-01-02")
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and payload.
// Used for duplicate-row detection.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == other.text
	case KindNumber:
		return v.num == other.num
	case KindDate:
		return v.date.Equal(other.date)
	default:
		return true
	}
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate attempts to parse a date string in multiple formats.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ParseNumber parses a numeric cell, tolerating thousands separators
// and surrounding whitespace.
func ParseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty numeric cell")
	}
	return strconv.ParseFloat(s, 64)
}

// AsNumber coerces a cell to a number. Text that fails to parse, and
// null, coerce to (Null, false); numbers pass through unchanged.
func (v Value) AsNumber() (Value, bool) {
	switch v.kind {
	case KindNumber:
		return v, true
	case KindText:
		f, err := ParseNumber(v.text)
		if err != nil {
			return Null(), false
		}
		return Number(f), true
	default:
		return Null(), false
	}
}

// AsDate coerces a cell to a date. Unparseable text and null coerce to
// (Null, false).
func (v Value) AsDate() (Value, bool) {
	switch v.kind {
	case KindDate:
		return v, true
	case KindText:
		t, err := ParseDate(v.text)
		if err != nil {
			return Null(), false
		}
		return Date(t), true
	default:
		return Null(), false
	}
}
