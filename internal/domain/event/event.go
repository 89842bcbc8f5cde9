// Package event defines the notifications the engine emits for observers.
package event

import (
	"context"
	"time"
)

// Name identifies an event kind.
type Name string

// Event names.
const (
	DocumentIndexed  Name = "search.document.indexed"
	DocumentUpdated  Name = "search.document.updated"
	DocumentDeleted  Name = "search.document.deleted"
	SearchExecuted   Name = "search.executed"
	HistoryCleared   Name = "search.history.cleared"
	SearchSaved      Name = "search.saved"
	SavedDeleted     Name = "search.saved.deleted"
	ReindexCompleted Name = "search.reindex.completed"
	IndexCleared     Name = "search.index.cleared"
	SchemaRegistered Name = "search.schema.registered"
)

// Attribute keys.
const (
	AttrTypes   = "types"
	AttrResults = "results"
	AttrTookMS  = "took_ms"
	AttrType    = "type"
	AttrID      = "id"
	AttrTenant  = "tenant"
	AttrUser    = "user"
	AttrCount   = "count"
	AttrFailed  = "failed"
	AttrQuery   = "query"
)

// Event is one emitted notification.
type Event struct {
	Name  Name           `json:"name"`
	At    time.Time      `json:"at"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// New creates an event stamped with at.
func New(name Name, at time.Time, attrs map[string]any) Event {
	return Event{Name: name, At: at, Attrs: attrs}
}

// Handler receives events. Handlers must not block the emitter.
type Handler func(ctx context.Context, e Event)

// Emitter publishes events.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Discard is an Emitter that drops everything.
type Discard struct{}

// Emit implements Emitter.
func (Discard) Emit(context.Context, Event) {}
