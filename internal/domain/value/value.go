// Package value implements the tagged field values stored on indexed documents.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the dynamic type of a Value.
type Kind uint8

// Kind constants. KindNull sorts first so typed values always compare after absent ones.
const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "boolean"
	default:
		return "null"
	}
}

// dateLayouts are tried in order when a date arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Value is an immutable tagged field value. It keeps the caller's raw value so
// the original field map can be returned unchanged.
type Value struct {
	kind Kind
	text string
	num  float64
	ts   time.Time
	b    bool
	raw  any
}

// Null returns the absent value.
func Null() Value { return Value{kind: KindNull} }

// Text creates a text value.
func Text(s string) Value { return Value{kind: KindText, text: s, raw: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f, raw: f} }

// Date creates a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, ts: t, raw: t} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b, raw: b} }

// Parse coerces raw into a value of kind k. A nil raw is always Null.
// KindNull as target means "infer from raw".
func Parse(raw any, k Kind) (Value, error) {
	if raw == nil {
		return Null(), nil
	}

	var v Value
	switch k {
	case KindText:
		s, err := textOf(raw)
		if err != nil {
			return Value{}, err
		}
		v = Text(s)
	case KindNumber:
		f, err := numberOf(raw)
		if err != nil {
			return Value{}, err
		}
		v = Number(f)
	case KindDate:
		t, err := dateOf(raw)
		if err != nil {
			return Value{}, err
		}
		v = Date(t)
	case KindBool:
		b, err := boolOf(raw)
		if err != nil {
			return Value{}, err
		}
		v = Bool(b)
	default:
		return Infer(raw), nil
	}

	v.raw = raw
	return v, nil
}

// Infer picks a kind from the Go type of raw. Composite values become text.
func Infer(raw any) Value {
	var v Value
	switch r := raw.(type) {
	case nil:
		return Null()
	case string:
		v = Text(r)
	case bool:
		v = Bool(r)
	case time.Time:
		v = Date(r)
	case json.Number:
		f, err := r.Float64()
		if err != nil {
			v = Text(r.String())
		} else {
			v = Number(f)
		}
	default:
		if f, ok := numeric(raw); ok {
			v = Number(f)
		} else {
			v = Text(fmt.Sprint(raw))
		}
	}
	v.raw = raw
	return v
}

// Kind returns the value tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Raw returns the value exactly as supplied by the caller.
func (v Value) Raw() any { return v.raw }

// Text returns the text payload of a KindText value.
func (v Value) Text() string { return v.text }

// Number returns the numeric payload of a KindNumber value.
func (v Value) Number() float64 { return v.num }

// Time returns the payload of a KindDate value.
func (v Value) Time() time.Time { return v.ts }

// Bool returns the payload of a KindBool value.
func (v Value) Bool() bool { return v.b }

// String returns the canonical text form used for indexing and faceting.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		t := v.ts.UTC()
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339Nano)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Compare orders two values. Values of different kinds order by kind.
// Text compares case-insensitively, falling back to byte order on ties.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmpInt(int(a.kind), int(b.kind))
	}
	switch a.kind {
	case KindText:
		if c := strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text)); c != 0 {
			return c
		}
		return strings.Compare(a.text, b.text)
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case KindDate:
		return a.ts.Compare(b.ts)
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b hold the same kind and payload.
// Text values compare case-insensitively.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindText {
		return strings.EqualFold(a.text, b.text)
	}
	return Compare(a, b) == 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func textOf(raw any) (string, error) {
	switch r := raw.(type) {
	case string:
		return r, nil
	case json.Number:
		return r.String(), nil
	case bool:
		return strconv.FormatBool(r), nil
	case time.Time:
		return r.Format(time.RFC3339Nano), nil
	}
	if f, ok := numeric(raw); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("expected text, got %T", raw)
}

func numberOf(raw any) (float64, error) {
	var (
		f  float64
		ok bool
	)
	switch r := raw.(type) {
	case json.Number:
		parsed, err := r.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", r.String())
		}
		f, ok = parsed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", r)
		}
		f, ok = parsed, true
	default:
		f, ok = numeric(raw)
	}
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number must be finite")
	}
	return f, nil
}

func dateOf(raw any) (time.Time, error) {
	switch r := raw.(type) {
	case time.Time:
		return r, nil
	case string:
		s := strings.TrimSpace(r)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("expected a date, got %q", r)
	}
	return time.Time{}, fmt.Errorf("expected a date, got %T", raw)
}

func boolOf(raw any) (bool, error) {
	switch r := raw.(type) {
	case bool:
		return r, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("expected a boolean, got %q", r)
	}
	return false, fmt.Errorf("expected a boolean, got %T", raw)
}

func numeric(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
