package i18n

import "testing"

func TestNewLabels(t *testing.T) {
	l, err := NewLabels(map[string]string{"EN": "Status", "ro": "Stare", "de": " "}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("expected 2 labels (blank dropped), got %d", len(l))
	}
	if l.Get(RO) != "Stare" {
		t.Errorf("expected Stare, got %q", l.Get(RO))
	}
	if l.Get("fr") != "Status" {
		t.Errorf("expected english fallback, got %q", l.Get("fr"))
	}
}

func TestNewLabels_TooFew(t *testing.T) {
	if _, err := NewLabels(map[string]string{"en": "Status"}, 2); err == nil {
		t.Fatal("expected error for a single label")
	}
}

func TestParseLocale(t *testing.T) {
	if ParseLocale("") != Auto {
		t.Error("empty locale should mean auto")
	}
	if ParseLocale(" RO ") != RO {
		t.Error("expected ro")
	}
}
