package search

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/recordex/internal/analysis"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/search/query"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

// Match weights per (term, field) pair.
const (
	weightExact     = 10.0
	weightPrefix    = 5.0
	weightSubstring = 1.0
	weightFuzzy     = 0.5
	browseScore     = 1.0
)

// scorer computes additive match scores. Scores are not normalized by
// document length or field count.
type scorer struct {
	terms       []analysis.Term
	operator    query.Operator
	fuzzy       bool
	distance    int
	minFuzzyLen int
	allow       []string
}

// score returns the document score and whether it satisfies the operator.
func (sc scorer) score(doc domdoc.Document, sch domschema.Schema) (float64, bool) {
	if len(sc.terms) == 0 {
		return browseScore, true
	}
	fields := sc.candidates(sch)

	total := 0.0
	matched := 0
	for _, term := range sc.terms {
		hit := false
		for _, f := range fields {
			text := doc.FieldText(f.Name())
			if text == "" {
				continue
			}
			if w := sc.weight(text, doc.Tokens(f.Name()), term); w > 0 {
				total += w * f.Boost()
				hit = true
			}
		}
		if hit {
			matched++
		}
	}

	switch sc.operator {
	case query.Or:
		if matched == 0 {
			return 0, false
		}
	default:
		if matched < len(sc.terms) {
			return 0, false
		}
	}
	return total * sch.DefaultBoost(), true
}

func (sc scorer) candidates(sch domschema.Schema) []field.Descriptor {
	if len(sc.allow) == 0 {
		return sch.Searchable()
	}
	out := make([]field.Descriptor, 0, len(sc.allow))
	for _, name := range sc.allow {
		if f, ok := sch.Field(name); ok {
			out = append(out, f)
		}
	}
	return out
}

// weight is the best match of any term variant against one field.
func (sc scorer) weight(text string, tokens []string, term analysis.Term) float64 {
	best := 0.0
	for _, v := range term.Variants {
		switch {
		case text == v:
			return weightExact
		case strings.HasPrefix(text, v):
			best = max(best, weightPrefix)
		case strings.Contains(text, v):
			best = max(best, weightSubstring)
		}
	}
	if best > 0 || !sc.fuzzy {
		return best
	}
	for _, v := range term.Variants {
		if utf8.RuneCountInString(v) < sc.minFuzzyLen {
			continue
		}
		for _, tok := range tokens {
			if analysis.WithinDistance(tok, v, sc.distance) {
				return weightFuzzy
			}
		}
	}
	return 0
}
