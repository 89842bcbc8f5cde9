// Package events fans engine events out to subscribers.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain/event"
)

// Bus delivers each event synchronously to every subscriber in
// subscription order. A panicking subscriber is logged and skipped.
type Bus struct {
	mu       sync.RWMutex
	handlers []event.Handler
	logger   *zap.Logger
}

// Compile-time check: Bus implements event.Emitter.
var _ event.Emitter = (*Bus)(nil)

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe adds h to the bus.
func (b *Bus) Subscribe(h event.Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Emit implements event.Emitter.
func (b *Bus) Emit(ctx context.Context, e event.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()
	for _, h := range handlers {
		b.deliver(ctx, h, e)
	}
}

func (b *Bus) deliver(ctx context.Context, h event.Handler, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("event subscriber panicked",
				zap.String("event", string(e.Name)),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}

// LogHandler writes every event as an audit line.
func LogHandler(logger *zap.Logger) event.Handler {
	return func(_ context.Context, e event.Event) {
		fields := make([]zap.Field, 0, len(e.Attrs)+1)
		fields = append(fields, zap.String("event", string(e.Name)))
		for k, v := range e.Attrs {
			fields = append(fields, zap.Any(k, v))
		}
		logger.Info("event", fields...)
	}
}
