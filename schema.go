package recordex

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

const tagKey = "recordex"

// recordMeta holds parsed struct tag metadata, cached per TypedIndex.
type recordMeta struct {
	typ   reflect.Type
	ptr   bool // T is a pointer to typ
	idIdx int  // -1 if T has no id field
	// Mapping from struct field index to document field name.
	fields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
	omitEmpty bool
}

// parseRecord reflects on T and extracts recordex struct tag metadata.
// Exported fields without a tag map to their Go name.
func parseRecord[T any]() (*recordMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("recordex: type parameter must be a struct")
	}
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("recordex: type %s is not a struct", t)
	}

	meta := &recordMeta{typ: t, ptr: ptr, idIdx: -1}
	seen := make(map[string]string)
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(tagKey)
		if tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag, seen); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// applyTag processes a single struct field's recordex tag.
func applyTag(meta *recordMeta, idx int, f reflect.StructField, tag string, seen map[string]string) error {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	modifier := ""
	if len(parts) == 2 {
		modifier = parts[1]
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("recordex: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("recordex: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
		return nil
	case "", "omitempty":
	default:
		return fmt.Errorf("recordex: unknown modifier %q on field %s", modifier, f.Name)
	}

	if name == "" {
		name = f.Name
	}
	if other, dup := seen[name]; dup {
		return fmt.Errorf("recordex: fields %s and %s both map to %q", other, f.Name, name)
	}
	seen[name] = f.Name
	meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name, omitEmpty: modifier == "omitempty"})
	return nil
}

// toFields converts a typed struct to a document field map. time.Time
// values are written as RFC 3339 strings.
func (m *recordMeta) toFields(item any) (map[string]any, error) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("recordex: nil %s", m.typ)
		}
		v = v.Elem()
	}

	fields := make(map[string]any, len(m.fields))
	for _, fm := range m.fields {
		fv := v.Field(fm.structIdx)
		if fm.omitEmpty && fv.IsZero() {
			continue
		}
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if t, ok := fv.Interface().(time.Time); ok {
			fields[fm.name] = t.Format(time.RFC3339)
			continue
		}
		fields[fm.name] = fv.Interface()
	}
	return fields, nil
}

// id returns the id stored in item, or "" if T has no id field.
func (m *recordMeta) id(item any) string {
	if m.idIdx == -1 {
		return ""
	}
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return v.Field(m.idIdx).String()
}

// fromFields converts a document back to a typed struct. Values that cannot
// be assigned to their struct field are left zero.
func (m *recordMeta) fromFields(id string, fields map[string]any) any {
	v := reflect.New(m.typ).Elem()
	if m.idIdx != -1 {
		v.Field(m.idIdx).SetString(id)
	}
	for _, fm := range m.fields {
		raw, ok := fields[fm.name]
		if !ok || raw == nil {
			continue
		}
		assign(v.Field(fm.structIdx), raw)
	}
	if m.ptr {
		return v.Addr().Interface()
	}
	return v.Interface()
}

func assign(dst reflect.Value, raw any) {
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		assign(elem.Elem(), raw)
		dst.Set(elem)
		return
	}
	if dst.Type() == reflect.TypeOf(time.Time{}) {
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				dst.Set(reflect.ValueOf(t))
			}
		}
		return
	}
	src := reflect.ValueOf(raw)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case isNumber(src.Kind()) && isNumber(dst.Kind()):
		setNumber(dst, toFloat64(src))
	case dst.Kind() == reflect.String:
		dst.SetString(fmt.Sprint(raw))
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}

func setNumber(v reflect.Value, f float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(f))
	}
}
