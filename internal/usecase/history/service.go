// Package history lists and clears per-user search history.
package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/event"
	domhistory "github.com/kailas-cloud/recordex/internal/domain/history"
)

// DefaultLimit is the number of entries List returns when no limit is given.
const DefaultLimit = 20

// Service handles history reads and clears.
type Service struct {
	store  Store
	events event.Emitter
	logger *zap.Logger
	now    func() time.Time
}

// New creates a history service.
func New(store Store) *Service {
	return &Service{store: store, events: event.Discard{}, logger: zap.NewNop(), now: time.Now}
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

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// List returns up to limit entries for the user, newest first.
func (s *Service) List(_ context.Context, userID string, limit int) ([]domhistory.Entry, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "user id is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.store.List(userID, limit), nil
}

// Clear removes the user's history and returns how many entries were dropped.
func (s *Service) Clear(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domain.NewValidationError("userId", "user id is required")
	}
	n := s.store.Clear(userID)
	s.events.Emit(ctx, event.New(event.HistoryCleared, s.now(), map[string]any{
		event.AttrUser:  userID,
		event.AttrCount: n,
	}))
	s.logger.Debug("history cleared", zap.String("user", userID), zap.Int("entries", n))
	return n, nil
}
