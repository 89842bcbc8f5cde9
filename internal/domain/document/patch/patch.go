package patch

import (
	"fmt"
	"maps"
	"sort"
)

// Patch is a partial document update.
// A nil value means delete that field; other values replace it.
type Patch struct {
	set   map[string]any
	unset []string
}

// New validates and creates a Patch. At least one field must be provided.
func New(fields map[string]any) (Patch, error) {
	if len(fields) == 0 {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	p := Patch{set: make(map[string]any, len(fields))}
	for k, v := range fields {
		if k == "" {
			return Patch{}, fmt.Errorf("field name is required")
		}
		if v == nil {
			p.unset = append(p.unset, k)
			continue
		}
		p.set[k] = v
	}
	sort.Strings(p.unset)
	return p, nil
}

// Set returns the replaced fields.
func (p Patch) Set() map[string]any { return p.set }

// Unset returns the deleted field names, sorted.
func (p Patch) Unset() []string { return p.unset }

// Apply merges the patch onto base and returns the new field map. base is not modified.
func (p Patch) Apply(base map[string]any) map[string]any {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]any, len(p.set))
	}
	for k, v := range p.set {
		out[k] = v
	}
	for _, k := range p.unset {
		delete(out, k)
	}
	return out
}
