package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/recordex/internal/analysis"
	"github.com/kailas-cloud/recordex/internal/domain"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/value"
)

type predicate func(doc domdoc.Document) bool

// compileFilters coerces every operand to the field's declared kind (or the
// operand's own kind for fields outside the schema) and returns predicates
// that must all pass.
func compileFilters(sch domschema.Schema, filters []filter.Filter) ([]predicate, error) {
	out := make([]predicate, 0, len(filters))
	for _, f := range filters {
		p, err := compileFilter(sch, f)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func compileFilter(sch domschema.Schema, f filter.Filter) (predicate, error) {
	name := f.Field()
	kind := value.KindNull
	if d, ok := sch.Field(name); ok {
		kind = d.Type().Kind()
	}
	coerce := func(raw any) (value.Value, error) {
		if raw == nil {
			return value.Null(), nil
		}
		k := kind
		if k == value.KindNull {
			k = value.Infer(raw).Kind()
		}
		v, err := value.Parse(raw, k)
		if err != nil {
			return value.Value{}, domain.NewQueryError(name, fmt.Sprintf("%s operand: %v", f.Operator(), err))
		}
		return v, nil
	}
	get := func(doc domdoc.Document) (value.Value, bool) { return doc.Value(name) }

	switch op := f.Operator(); op {
	case filter.Exists:
		want, err := value.Parse(f.Value(), value.KindBool)
		if err != nil {
			return nil, domain.NewQueryError(name, "EXISTS operand must be a boolean")
		}
		return func(doc domdoc.Document) bool {
			_, present := get(doc)
			return present == want.Bool()
		}, nil

	case filter.Contains, filter.StartsWith, filter.EndsWith:
		needle := analysis.Fold(value.Infer(f.Value()).String())
		match := map[filter.Operator]func(string, string) bool{
			filter.Contains:   strings.Contains,
			filter.StartsWith: strings.HasPrefix,
			filter.EndsWith:   strings.HasSuffix,
		}[op]
		return func(doc domdoc.Document) bool {
			v, present := get(doc)
			return present && match(analysis.Fold(v.String()), needle)
		}, nil

	case filter.In, filter.NotIn:
		set := make([]value.Value, 0, len(f.Values()))
		for _, raw := range f.Values() {
			v, err := coerce(raw)
			if err != nil {
				return nil, err
			}
			set = append(set, v)
		}
		negate := op == filter.NotIn
		return func(doc domdoc.Document) bool {
			v, present := get(doc)
			if !present {
				return negate
			}
			for _, s := range set {
				if value.Equal(v, s) {
					return !negate
				}
			}
			return negate
		}, nil

	case filter.Between, filter.Range:
		lo, err := coerce(f.Value())
		if err != nil {
			return nil, err
		}
		hi, err := coerce(f.Secondary())
		if err != nil {
			return nil, err
		}
		inclusiveHi := op == filter.Between
		return func(doc domdoc.Document) bool {
			v, present := get(doc)
			if !present {
				return false
			}
			if !lo.IsNull() && value.Compare(v, lo) < 0 {
				return false
			}
			if hi.IsNull() {
				return true
			}
			c := value.Compare(v, hi)
			return c < 0 || (inclusiveHi && c == 0)
		}, nil

	default:
		operand, err := coerce(f.Value())
		if err != nil {
			return nil, err
		}
		return func(doc domdoc.Document) bool {
			v, present := get(doc)
			switch op {
			case filter.NotEquals:
				return !present || !value.Equal(v, operand)
			case filter.GreaterThan:
				return present && value.Compare(v, operand) > 0
			case filter.LessThan:
				return present && value.Compare(v, operand) < 0
			default:
				return present && value.Equal(v, operand)
			}
		}, nil
	}
}

func passes(doc domdoc.Document, preds []predicate) bool {
	for _, p := range preds {
		if !p(doc) {
			return false
		}
	}
	return true
}
