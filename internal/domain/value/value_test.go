package value

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_Number(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want float64
	}{
		{"int", 5000, 5000},
		{"float", 12.5, 12.5},
		{"numeric string", " 42.25 ", 42.25},
		{"json number", json.Number("19"), 19},
		{"uint8", uint8(7), 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Parse(tc.raw, KindNumber)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind() != KindNumber {
				t.Fatalf("expected number kind, got %s", v.Kind())
			}
			if v.Number() != tc.want {
				t.Errorf("got %v, want %v", v.Number(), tc.want)
			}
		})
	}
}

func TestParse_NumberRejectsGarbage(t *testing.T) {
	for _, raw := range []any{"abc", true, []string{"1"}} {
		if _, err := Parse(raw, KindNumber); err == nil {
			t.Errorf("expected error for %#v", raw)
		}
	}
}

func TestParse_KeepsRaw(t *testing.T) {
	v, err := Parse(5000, KindNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw, ok := v.Raw().(int); !ok || raw != 5000 {
		t.Errorf("expected raw int 5000, got %#v", v.Raw())
	}

	v, err = Parse("2025-03-01", KindDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Raw() != "2025-03-01" {
		t.Errorf("expected raw string, got %#v", v.Raw())
	}
	if v.String() != "2025-03-01" {
		t.Errorf("expected canonical 2025-03-01, got %q", v.String())
	}
}

func TestParse_DateLayouts(t *testing.T) {
	for _, s := range []string{
		"2025-03-01T10:00:00Z",
		"2025-03-01T10:00:00.123+02:00",
		"2025-03-01 10:00:00",
		"2025-03-01",
	} {
		if _, err := Parse(s, KindDate); err != nil {
			t.Errorf("layout %q: unexpected error: %v", s, err)
		}
	}
	if _, err := Parse("01/03/2025", KindDate); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestParse_Bool(t *testing.T) {
	v, err := Parse("TRUE", KindBool)
	if err != nil || !v.Bool() {
		t.Fatalf("expected true, got %v (err %v)", v.Bool(), err)
	}
	if _, err := Parse("yes", KindBool); err == nil {
		t.Error("expected error for 'yes'")
	}
}

func TestParse_NilIsNull(t *testing.T) {
	v, err := Parse(nil, KindNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected null, got %s", v.Kind())
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		raw  any
		want Kind
	}{
		{"x", KindText},
		{3, KindNumber},
		{json.Number("1.5"), KindNumber},
		{false, KindBool},
		{time.Now(), KindDate},
		{nil, KindNull},
		{map[string]any{"a": 1}, KindText},
	}
	for _, tc := range tests {
		if got := Infer(tc.raw).Kind(); got != tc.want {
			t.Errorf("Infer(%#v) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestCompare(t *testing.T) {
	if Compare(Number(1), Number(2)) >= 0 {
		t.Error("1 should sort before 2")
	}
	if Compare(Text("acme"), Text("ACME")) == 0 {
		t.Error("case tie should fall back to byte order")
	}
	if Compare(Text("abc"), Text("ABD")) >= 0 {
		t.Error("text comparison should ignore case first")
	}
	if Compare(Null(), Text("a")) >= 0 {
		t.Error("null should order before typed values")
	}
	d1 := Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	d2 := Date(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if Compare(d1, d2) >= 0 {
		t.Error("earlier date should sort first")
	}
}

func TestEqual_TextIgnoresCase(t *testing.T) {
	if !Equal(Text("PAID"), Text("paid")) {
		t.Error("expected case-insensitive equality")
	}
	if Equal(Text("1"), Number(1)) {
		t.Error("different kinds must not be equal")
	}
}

func TestString(t *testing.T) {
	if got := Number(5000).String(); got != "5000" {
		t.Errorf("got %q", got)
	}
	if got := Number(12.5).String(); got != "12.5" {
		t.Errorf("got %q", got)
	}
	if got := Bool(true).String(); got != "true" {
		t.Errorf("got %q", got)
	}
	if got := Null().String(); got != "" {
		t.Errorf("got %q", got)
	}
}
