// Package schema holds the registered index schemas.
package schema

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/recordex/internal/domain"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
)

// Registry is a read-mostly map of document type to schema.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]domschema.Schema
}

// New creates a registry pre-loaded with schemas. Later duplicates replace
// earlier ones.
func New(schemas ...domschema.Schema) *Registry {
	r := &Registry{schemas: make(map[string]domschema.Schema, len(schemas))}
	for _, s := range schemas {
		r.schemas[s.Type()] = s
	}
	return r
}

// Register adds or replaces the schema for its type.
// Returns true if the type was not registered before.
func (r *Registry) Register(s domschema.Schema) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.schemas[s.Type()]
	r.schemas[s.Type()] = s
	return !existed
}

// Get returns the schema for docType.
func (r *Registry) Get(docType string) (domschema.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[docType]
	if !ok {
		return domschema.Schema{}, fmt.Errorf("schema %q: %w", docType, domain.ErrNotFound)
	}
	return s, nil
}

// Has reports whether docType is registered.
func (r *Registry) Has(docType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[docType]
	return ok
}

// List returns every schema ordered by type.
func (r *Registry) List() []domschema.Schema {
	r.mu.RLock()
	out := make([]domschema.Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b domschema.Schema) int { return strings.Compare(a.Type(), b.Type()) })
	return out
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	list := r.List()
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Type()
	}
	return out
}
