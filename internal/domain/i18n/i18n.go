// Package i18n holds locale tags and localized labels.
package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// Locale is a lowercase language tag such as "en" or "ro".
type Locale string

// Well-known locales.
const (
	EN Locale = "en"
	RO Locale = "ro"
	// Auto asks the analyzer to detect the locale from the query text.
	Auto Locale = "auto"
)

// ParseLocale lowercases and trims a locale tag. Empty input yields Auto.
func ParseLocale(s string) Locale {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto
	}
	return Locale(s)
}

// Labels maps locales to display strings.
type Labels map[Locale]string

// NewLabels validates that at least minLocales non-empty labels are present.
func NewLabels(m map[string]string, minLocales int) (Labels, error) {
	l := make(Labels, len(m))
	for k, v := range m {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		l[ParseLocale(k)] = v
	}
	if len(l) < minLocales {
		return nil, fmt.Errorf("at least %d localized labels required, got %d", minLocales, len(l))
	}
	return l, nil
}

// Get returns the label for loc, falling back to English and then to any label.
func (l Labels) Get(loc Locale) string {
	if v, ok := l[loc]; ok {
		return v
	}
	if v, ok := l[EN]; ok {
		return v
	}
	if keys := l.Locales(); len(keys) > 0 {
		return l[keys[0]]
	}
	return ""
}

// Locales returns the label locales in sorted order.
func (l Labels) Locales() []Locale {
	out := make([]Locale, 0, len(l))
	for k := range l {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Map returns a plain string map suitable for serialization.
func (l Labels) Map() map[string]string {
	out := make(map[string]string, len(l))
	for k, v := range l {
		out[string(k)] = v
	}
	return out
}
