package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Lexicon is the versioned language data used by the analyzer.
type Lexicon struct {
	Version       int                    `yaml:"version"`
	DefaultLocale string                 `yaml:"default_locale"`
	Locales       map[string]LocaleRules `yaml:"locales"`
	Synonyms      map[string][]string    `yaml:"synonyms"`
}

// LocaleRules holds per-locale stop words and detection markers.
type LocaleRules struct {
	StopWords []string `yaml:"stop_words"`
	Markers   []string `yaml:"markers"`
}

// DefaultLexicon returns the embedded Romanian/English lexicon.
func DefaultLexicon() Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
}

// LoadLexicon reads and validates a lexicon file.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes and validates lexicon YAML.
func ParseLexicon(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// Validate checks structural consistency.
func (l Lexicon) Validate() error {
	if l.Version < 1 {
		return fmt.Errorf("lexicon: version must be >= 1, got %d", l.Version)
	}
	if len(l.Locales) == 0 {
		return fmt.Errorf("lexicon: at least one locale is required")
	}
	if _, ok := l.Locales[strings.ToLower(l.DefaultLocale)]; !ok {
		return fmt.Errorf("lexicon: default_locale %q is not a declared locale", l.DefaultLocale)
	}
	for canonical, variants := range l.Synonyms {
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("lexicon: empty synonym key")
		}
		if len(variants) == 0 {
			return fmt.Errorf("lexicon: synonym %q has no variants", canonical)
		}
	}
	return nil
}
