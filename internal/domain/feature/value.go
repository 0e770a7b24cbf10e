package feature

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/duplicheck/internal/domain"
)

// Kind is the closed set of attribute value kinds.
type Kind int

// Value kinds. Anything outside Text/Integer/Real/Date is carried as Text.
const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindDate
)

// Value is a tagged attribute value. The zero value is NULL.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	t    time.Time
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Text creates a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Int creates an integer value.
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Real creates a floating-point value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Date creates a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the text payload. Valid only for KindText.
func (v Value) Text() string { return v.text }

// Int returns the integer payload. Valid only for KindInteger.
func (v Value) Int() int64 { return v.i }

// Real returns the float payload. Valid only for KindReal.
func (v Value) Real() float64 { return v.f }

// Date returns the date payload. Valid only for KindDate.
func (v Value) Date() time.Time { return v.t }

// String renders the value for keys, reasons and diagnostics.
// NULL renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindText:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDate:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal reports deep equality. Integer and real values compare numerically
// across kinds, mirroring how dynamically typed attribute tables behave.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return v.kind == o.kind
	}
	if v.isNumeric() && o.isNumeric() {
		return v.asFloat() == o.asFloat()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// Compare orders two non-null values. Numeric kinds are mutually comparable,
// text compares lexically, dates chronologically. Mixed kinds return
// domain.ErrValuesNotComparable.
func (v Value) Compare(o Value) (int, error) {
	if v.kind == KindNull || o.kind == KindNull {
		return 0, fmt.Errorf("%w: null operand", domain.ErrValuesNotComparable)
	}
	if v.isNumeric() && o.isNumeric() {
		a, b := v.asFloat(), o.asFloat()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if v.kind != o.kind {
		return 0, fmt.Errorf("%w: %v vs %v", domain.ErrValuesNotComparable, v.kind, o.kind)
	}
	switch v.kind {
	case KindText:
		switch {
		case v.text < o.text:
			return -1, nil
		case v.text > o.text:
			return 1, nil
		default:
			return 0, nil
		}
	case KindDate:
		switch {
		case v.t.Before(o.t):
			return -1, nil
		case v.t.After(o.t):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("%w: kind %v", domain.ErrValuesNotComparable, v.kind)
	}
}

func (v Value) isNumeric() bool {
	return v.kind == KindInteger || v.kind == KindReal
}

func (v Value) asFloat() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}
