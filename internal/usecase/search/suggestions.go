package search

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/recordex/internal/analysis"
)

// historyDistance bounds how far a past query may be from the current one.
const historyDistance = 3

// didYouMean proposes alternative queries: synonym substitutions first,
// then near matches from recorded history. The query itself is never proposed.
func (s *Service) didYouMean(raw string) []string {
	q := strings.ToLower(strings.TrimSpace(raw))
	if q == "" || s.suggestionLimit <= 0 {
		return nil
	}
	var out []string
	add := func(sug string) bool {
		sug = strings.TrimSpace(sug)
		if sug != "" && sug != q && !slices.Contains(out, sug) {
			out = append(out, sug)
		}
		return len(out) >= s.suggestionLimit
	}

	for _, tok := range analysis.UniqueTokens(q) {
		canonical, group, ok := s.analyzer.Synonym(tok)
		if !ok {
			continue
		}
		var alts []string
		if tok == canonical {
			alts = group[1:min(3, len(group))]
		} else {
			alts = []string{canonical}
		}
		for _, alt := range alts {
			if add(replaceWord(q, tok, alt)) {
				return out
			}
		}
	}

	if s.history == nil {
		return out
	}
	type near struct {
		text string
		dist int
	}
	var cands []near
	for _, past := range s.history.Queries() {
		past = strings.ToLower(strings.TrimSpace(past))
		if past == "" || past == q {
			continue
		}
		if strings.Contains(past, q) || strings.Contains(q, past) || analysis.WithinDistance(past, q, historyDistance) {
			cands = append(cands, near{text: past, dist: analysis.Distance(past, q)})
		}
	}
	slices.SortFunc(cands, func(a, b near) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return strings.Compare(a.text, b.text)
	})
	for _, c := range cands {
		if add(c.text) {
			return out
		}
	}
	return out
}

// replaceWord substitutes whole-word occurrences of word in q.
func replaceWord(q, word, with string) string {
	parts := strings.Fields(q)
	for i, p := range parts {
		if strings.Trim(p, ".,;:!?") == word {
			parts[i] = strings.Replace(p, word, with, 1)
		}
	}
	return strings.Join(parts, " ")
}
