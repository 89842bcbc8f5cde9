// Package document is the in-memory document store, partitioned by tenant
// and document type.
package document

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/recordex/internal/domain"
	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
)

type partitionKey struct {
	tenant  string
	docType string
}

type partition struct {
	mu   sync.RWMutex
	docs map[string]domdoc.Document
}

// Store keeps documents by partition with an id index on top.
// Lock order: Store.mu before partition.mu.
type Store struct {
	mu         sync.RWMutex
	partitions map[partitionKey]*partition
	index      map[string]partitionKey
}

// New creates an empty store.
func New() *Store {
	return &Store{
		partitions: make(map[partitionKey]*partition),
		index:      make(map[string]partitionKey),
	}
}

// Put inserts a new document. Fails with ErrConflict if the id is taken.
func (s *Store) Put(doc domdoc.Document) error {
	key := partitionKey{tenant: doc.Tenant(), docType: doc.Type()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.index[doc.ID()]; taken {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrConflict)
	}
	p, ok := s.partitions[key]
	if !ok {
		p = &partition{docs: make(map[string]domdoc.Document)}
		s.partitions[key] = p
	}
	p.mu.Lock()
	p.docs[doc.ID()] = doc
	p.mu.Unlock()
	s.index[doc.ID()] = key
	return nil
}

// Get returns a document by id.
func (s *Store) Get(id string) (domdoc.Document, error) {
	p := s.partitionOf(id)
	if p == nil {
		return domdoc.Document{}, notFound(id)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	doc, ok := p.docs[id]
	if !ok {
		return domdoc.Document{}, notFound(id)
	}
	return doc, nil
}

// Update replaces a document with fn's result under the partition lock.
// fn must not change the id, tenant or type.
func (s *Store) Update(id string, fn func(domdoc.Document) (domdoc.Document, error)) (domdoc.Document, error) {
	p := s.partitionOf(id)
	if p == nil {
		return domdoc.Document{}, notFound(id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.docs[id]
	if !ok {
		return domdoc.Document{}, notFound(id)
	}
	next, err := fn(cur)
	if err != nil {
		return domdoc.Document{}, err
	}
	p.docs[id] = next
	return next, nil
}

// Delete removes a document by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.index[id]
	if !ok {
		return notFound(id)
	}
	delete(s.index, id)
	p := s.partitions[key]
	p.mu.Lock()
	delete(p.docs, id)
	p.mu.Unlock()
	return nil
}

// Scan returns a snapshot of the documents of the given types.
// An empty tenant matches every tenant; empty types match every type.
func (s *Store) Scan(tenant string, types []string) []domdoc.Document {
	var out []domdoc.Document
	for _, p := range s.partitionsFor(tenant, types) {
		p.mu.RLock()
		for _, doc := range p.docs {
			out = append(out, doc)
		}
		p.mu.RUnlock()
	}
	return out
}

// Rewrite recomputes every document of docType with fn, one document at a
// time. A document whose fn fails is kept unchanged and counted as failed.
// A document modified concurrently is left to the writer that modified it.
func (s *Store) Rewrite(docType string, fn func(domdoc.Document) (domdoc.Document, error)) (ok, failed int) {
	for _, p := range s.partitionsFor("", []string{docType}) {
		p.mu.RLock()
		snapshot := make([]domdoc.Document, 0, len(p.docs))
		for _, doc := range p.docs {
			snapshot = append(snapshot, doc)
		}
		p.mu.RUnlock()

		for _, old := range snapshot {
			next, err := fn(old)
			if err != nil {
				failed++
				continue
			}
			p.mu.Lock()
			if cur, present := p.docs[old.ID()]; present && cur.UpdatedAt().Equal(old.UpdatedAt()) {
				p.docs[old.ID()] = next
			}
			p.mu.Unlock()
			ok++
		}
	}
	return ok, failed
}

// Clear removes every document of docType. An empty tenant clears all tenants.
// Returns the number of documents removed.
func (s *Store) Clear(docType, tenant string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, p := range s.partitions {
		if key.docType != docType || (tenant != "" && key.tenant != tenant) {
			continue
		}
		p.mu.Lock()
		for id := range p.docs {
			delete(s.index, id)
		}
		removed += len(p.docs)
		p.docs = make(map[string]domdoc.Document)
		p.mu.Unlock()
		delete(s.partitions, key)
	}
	return removed
}

// Stats counts documents per type.
func (s *Store) Stats() domdoc.Stats {
	st := domdoc.Stats{ByType: make(map[string]int)}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, p := range s.partitions {
		p.mu.RLock()
		n := len(p.docs)
		p.mu.RUnlock()
		st.ByType[key.docType] += n
		st.Total += n
	}
	return st
}

func (s *Store) partitionOf(id string) *partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.partitions[key]
}

func (s *Store) partitionsFor(tenant string, types []string) []*partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*partition
	for key, p := range s.partitions {
		if tenant != "" && key.tenant != tenant {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, key.docType) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func notFound(id string) error {
	return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}
