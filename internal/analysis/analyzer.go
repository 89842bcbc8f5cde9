// Package analysis tokenizes text, applies per-locale stop words and synonyms,
// detects the query language and measures edit distance.
package analysis

import (
	"errors"
	"maps"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/recordex/internal/domain/i18n"
)

// ErrUnsupportedLocale is returned for locales the lexicon does not declare.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Combining marks stay inside words so decomposed diacritics survive until
// Fold recomposes them.
var separators = regexp.MustCompile(`[^\p{L}\p{M}\p{N}]+`)

// Term is one analyzed query term.
type Term struct {
	Canonical string   // synonym group key, or the token itself
	Surface   string   // token as it appeared in the query
	Variants  []string // canonical first, then every synonym
}

// Analyzer is safe for concurrent use; it is never mutated after New.
type Analyzer struct {
	defaultLocale i18n.Locale
	stopWords     map[i18n.Locale]map[string]struct{}
	markers       map[i18n.Locale]map[string]struct{}
	groups        map[string][]string // canonical -> variants (canonical first)
	canonicalOf   map[string]string   // any variant -> canonical
	version       int
}

// New builds an analyzer from a validated lexicon.
func New(lex Lexicon) *Analyzer {
	a := &Analyzer{
		defaultLocale: i18n.ParseLocale(lex.DefaultLocale),
		stopWords:     make(map[i18n.Locale]map[string]struct{}, len(lex.Locales)),
		markers:       make(map[i18n.Locale]map[string]struct{}, len(lex.Locales)),
		groups:        make(map[string][]string, len(lex.Synonyms)),
		canonicalOf:   make(map[string]string),
		version:       lex.Version,
	}
	for name, rules := range lex.Locales {
		loc := i18n.ParseLocale(name)
		a.stopWords[loc] = wordSet(rules.StopWords)
		a.markers[loc] = wordSet(rules.Markers)
	}

	keys := slices.Sorted(maps.Keys(lex.Synonyms))
	for _, key := range keys {
		canonical := Fold(strings.TrimSpace(key))
		group := []string{canonical}
		for _, v := range lex.Synonyms[key] {
			v = Fold(strings.TrimSpace(v))
			if v != "" && !slices.Contains(group, v) {
				group = append(group, v)
			}
		}
		a.groups[canonical] = group
		for _, v := range group {
			if _, taken := a.canonicalOf[v]; !taken {
				a.canonicalOf[v] = canonical
			}
		}
	}
	return a
}

// Default returns an analyzer over the embedded lexicon.
func Default() *Analyzer { return New(DefaultLexicon()) }

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[Fold(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

// Version returns the lexicon version.
func (a *Analyzer) Version() int { return a.version }

// DefaultLocale returns the fallback locale.
func (a *Analyzer) DefaultLocale() i18n.Locale { return a.defaultLocale }

// Locales returns the declared locales, sorted.
func (a *Analyzer) Locales() []i18n.Locale {
	return slices.Sorted(maps.Keys(a.stopWords))
}

// Supports reports whether loc is declared in the lexicon.
func (a *Analyzer) Supports(loc i18n.Locale) bool {
	_, ok := a.stopWords[loc]
	return ok
}

// Fold puts s in the form every index and query comparison uses: NFC
// composed and lowercased. "Brașov" typed with a combining comma below
// folds to the same string as its precomposed spelling.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Tokenize folds s and splits it on runs of runes that are not letters,
// marks or digits.
func Tokenize(s string) []string {
	parts := separators.Split(Fold(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// UniqueTokens is Tokenize with duplicates removed, first occurrence kept.
func UniqueTokens(s string) []string {
	tokens := Tokenize(s)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Terms analyzes a query for loc: tokenize, drop the locale's stop words,
// map synonyms to their canonical form and de-duplicate by canonical.
func (a *Analyzer) Terms(q string, loc i18n.Locale) []Term {
	stop := a.stopWords[loc]
	var terms []Term
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(q) {
		if _, ok := stop[tok]; ok {
			continue
		}
		canonical, variants := tok, []string{tok}
		if c, ok := a.canonicalOf[tok]; ok {
			canonical, variants = c, a.groups[c]
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		terms = append(terms, Term{Canonical: canonical, Surface: tok, Variants: slices.Clone(variants)})
	}
	return terms
}

// DetectLocale counts whole-word marker hits per locale. The locale with the
// most hits wins; ties prefer the default locale, then the lexical order.
// No hits yields the default locale.
func (a *Analyzer) DetectLocale(q string) i18n.Locale {
	tokens := Tokenize(q)
	best, bestHits := a.defaultLocale, 0
	for _, loc := range a.Locales() {
		hits := 0
		for _, tok := range tokens {
			if _, ok := a.markers[loc][tok]; ok {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && loc == a.defaultLocale) {
			best, bestHits = loc, hits
		}
	}
	return best
}

// ResolveLocale returns requested when it is declared, detects it from q for
// the auto locale, and fails with ErrUnsupportedLocale otherwise.
func (a *Analyzer) ResolveLocale(requested i18n.Locale, q string) (i18n.Locale, error) {
	if requested == "" || requested == i18n.Auto {
		return a.DetectLocale(q), nil
	}
	if !a.Supports(requested) {
		return "", ErrUnsupportedLocale
	}
	return requested, nil
}

// Synonym returns the canonical key and the full group of word, if any.
func (a *Analyzer) Synonym(word string) (string, []string, bool) {
	c, ok := a.canonicalOf[Fold(word)]
	if !ok {
		return "", nil, false
	}
	return c, slices.Clone(a.groups[c]), true
}

// Synonyms returns a copy of every synonym group keyed by canonical.
func (a *Analyzer) Synonyms() map[string][]string {
	out := make(map[string][]string, len(a.groups))
	for k, v := range a.groups {
		out[k] = slices.Clone(v)
	}
	return out
}
