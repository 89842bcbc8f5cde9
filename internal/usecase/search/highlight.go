package search

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/recordex/internal/analysis"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

const (
	highlightOpen  = "<em>"
	highlightClose = "</em>"
)

// highlighter wraps every case-insensitive occurrence of a term variant.
type highlighter struct {
	re       *regexp.Regexp
	variants []string
}

func newHighlighter(terms []analysis.Term) *highlighter {
	var variants []string
	for _, t := range terms {
		for _, v := range t.Variants {
			if v != "" && !slices.Contains(variants, v) {
				variants = append(variants, v)
			}
		}
	}
	if len(variants) == 0 {
		return nil
	}
	// Longest first so alternation prefers the widest match.
	slices.SortFunc(variants, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(variants))
	for i, v := range variants {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return &highlighter{
		re:       regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`),
		variants: variants,
	}
}

// fields returns highlighted fragments for every text field containing a term.
func (h *highlighter) fields(doc domdoc.Document, sch domschema.Schema) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string)
	for name, v := range doc.Values() {
		if v.Kind() != value.KindText {
			continue
		}
		lower := doc.FieldText(name)
		if !h.contains(lower) {
			continue
		}
		text := norm.NFC.String(v.String())
		if d, ok := sch.Field(name); ok && d.Markup() == field.MarkupHTML {
			text = analysis.StripMarkup(text)
		}
		out[name] = h.re.ReplaceAllString(text, highlightOpen+"$0"+highlightClose)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (h *highlighter) contains(lower string) bool {
	for _, v := range h.variants {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}
