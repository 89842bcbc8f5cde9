package filter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain"
)

// MaxFilters is the maximum number of filters per query.
const MaxFilters = 32

// MaxInValues is the maximum number of operands for IN and NOT_IN.
const MaxInValues = 256

// Operator is a filter comparison operator.
type Operator string

// Operator constants.
const (
	Equals      Operator = "EQUALS"
	NotEquals   Operator = "NOT_EQUALS"
	Contains    Operator = "CONTAINS"
	StartsWith  Operator = "STARTS_WITH"
	EndsWith    Operator = "ENDS_WITH"
	GreaterThan Operator = "GREATER_THAN"
	LessThan    Operator = "LESS_THAN"
	Between     Operator = "BETWEEN"
	In          Operator = "IN"
	NotIn       Operator = "NOT_IN"
	Exists      Operator = "EXISTS"
	Range       Operator = "RANGE"
)

var operators = map[Operator]struct{}{
	Equals: {}, NotEquals: {}, Contains: {}, StartsWith: {}, EndsWith: {},
	GreaterThan: {}, LessThan: {}, Between: {}, In: {}, NotIn: {}, Exists: {}, Range: {},
}

// ParseOperator accepts EQUALS, equals and not-equals style spellings.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if _, ok := operators[op]; !ok {
		return "", fmt.Errorf("unknown filter operator %q", s)
	}
	return op, nil
}

// IsTextual reports whether the operator works on the text form of a value.
func (o Operator) IsTextual() bool {
	return o == Contains || o == StartsWith || o == EndsWith
}

// Spec is the serializable form of a Filter.
type Spec struct {
	Field          string `json:"field"`
	Operator       string `json:"operator"`
	Value          any    `json:"value,omitempty"`
	SecondaryValue any    `json:"secondaryValue,omitempty"`
}

// Filter is a single validated filter clause. Operand coercion against the
// field type happens when the query executor compiles it per schema.
type Filter struct {
	field     string
	op        Operator
	value     any
	secondary any
	values    []any
}

// New validates the shape of a filter: operand presence and arity.
func New(fieldName string, op Operator, val, secondary any) (Filter, error) {
	if fieldName == "" {
		return Filter{}, domain.NewQueryError("", "filter field is required")
	}
	if _, ok := operators[op]; !ok {
		return Filter{}, domain.NewQueryError(fieldName, fmt.Sprintf("unknown filter operator %q", op))
	}

	f := Filter{field: fieldName, op: op, value: val, secondary: secondary}
	switch op {
	case Exists:
		if val == nil {
			f.value = true
		}
	case Between:
		if val == nil || secondary == nil {
			return Filter{}, domain.NewQueryError(fieldName, "BETWEEN requires value and secondaryValue")
		}
	case Range:
		if val == nil && secondary == nil {
			return Filter{}, domain.NewQueryError(fieldName, "RANGE requires at least one bound")
		}
	case In, NotIn:
		values, ok := toSlice(val)
		if !ok {
			return Filter{}, domain.NewQueryError(fieldName, fmt.Sprintf("%s requires a list value", op))
		}
		if len(values) > MaxInValues {
			return Filter{}, domain.NewQueryError(fieldName, fmt.Sprintf("too many %s values (max %d)", op, MaxInValues))
		}
		f.values = values
	default:
		if val == nil {
			return Filter{}, domain.NewQueryError(fieldName, fmt.Sprintf("%s requires a value", op))
		}
	}
	return f, nil
}

// FromSpec validates a serialized filter.
func FromSpec(s Spec) (Filter, error) {
	op, err := ParseOperator(s.Operator)
	if err != nil {
		return Filter{}, domain.NewQueryError(s.Field, err.Error())
	}
	return New(s.Field, op, s.Value, s.SecondaryValue)
}

// Field returns the filtered field name.
func (f Filter) Field() string { return f.field }

// Operator returns the comparison operator.
func (f Filter) Operator() Operator { return f.op }

// Value returns the primary operand.
func (f Filter) Value() any { return f.value }

// Secondary returns the secondary operand (BETWEEN, RANGE upper bound).
func (f Filter) Secondary() any { return f.secondary }

// Values returns the operand list of IN and NOT_IN.
func (f Filter) Values() []any { return f.values }

// Spec returns the serializable form.
func (f Filter) Spec() Spec {
	return Spec{Field: f.field, Operator: string(f.op), Value: f.value, SecondaryValue: f.secondary}
}

func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
