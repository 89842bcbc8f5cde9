// Package schema exposes schema lookup and administrative registration.
package schema

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
	dombatch "github.com/kailas-cloud/recordex/internal/domain/batch"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	domschema "github.com/kailas-cloud/recordex/internal/domain/schema"
	"github.com/kailas-cloud/recordex/internal/domain/schema/field"
)

// PutResult reports the outcome of registering a schema.
type PutResult struct {
	Schema  domschema.Schema
	Created bool
	Reindex dombatch.Reindex
}

// Service handles schema reads and registration.
type Service struct {
	registry  Registry
	reindexer Reindexer
	locales   LocaleChecker
	events    event.Emitter
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a schema service.
func New(registry Registry, reindexer Reindexer, locales LocaleChecker) *Service {
	return &Service{
		registry:  registry,
		reindexer: reindexer,
		locales:   locales,
		events:    event.Discard{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
}

// WithEvents sets the event emitter.
func (s *Service) WithEvents(e event.Emitter) *Service {
	if e != nil {
		s.events = e
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// List returns every registered schema sorted by type.
func (s *Service) List(_ context.Context) []domschema.Schema {
	return s.registry.List()
}

// Get returns the schema of docType.
func (s *Service) Get(_ context.Context, docType string) (domschema.Schema, error) {
	sch, err := s.registry.Get(docType)
	if err != nil {
		return domschema.Schema{}, fmt.Errorf("get schema: %w", err)
	}
	return sch, nil
}

// Fields returns the fields of docType that carry the named capability.
func (s *Service) Fields(ctx context.Context, docType, capability string) ([]field.Descriptor, error) {
	c, err := field.ParseCapability(capability)
	if err != nil {
		return nil, domain.NewValidationError("capability", err.Error())
	}
	sch, err := s.Get(ctx, docType)
	if err != nil {
		return nil, err
	}
	return sch.FieldsWith(c), nil
}

// Put registers sch, replacing any schema of the same type, and reindexes
// the existing documents of that type against it.
func (s *Service) Put(ctx context.Context, sch domschema.Schema) (PutResult, error) {
	if !s.locales.Supports(sch.Locale()) {
		return PutResult{}, domain.NewValidationError("locale", fmt.Sprintf("unsupported locale %q", sch.Locale()))
	}
	created := s.registry.Register(sch)
	res, err := s.reindexer.Reindex(ctx, sch.Type())
	if err != nil {
		return PutResult{}, fmt.Errorf("reindex after schema change: %w", err)
	}
	s.events.Emit(ctx, event.New(event.SchemaRegistered, s.now(), map[string]any{
		event.AttrType:   sch.Type(),
		event.AttrCount:  res.Reindexed,
		event.AttrFailed: res.Failed,
	}))
	s.logger.Info("schema registered",
		zap.String("type", sch.Type()),
		zap.Bool("created", created),
		zap.Int("reindexed", res.Reindexed),
		zap.Int("failed", res.Failed),
	)
	return PutResult{Schema: sch, Created: created, Reindex: res}, nil
}
