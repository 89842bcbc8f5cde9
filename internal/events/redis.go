package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/db"
	"github.com/kailas-cloud/recordex/internal/domain/event"
)

// Sink defaults.
const (
	DefaultChannel = "recordex.events"
	DefaultBuffer  = 256
	counterPrefix  = "recordex:events:"
	publishTimeout = 2 * time.Second
)

// Broker is the subset of db.Store the sink needs.
type Broker interface {
	db.Pinger
	db.Publisher
	db.Counter
}

// SinkConfig configures a RedisSink.
type SinkConfig struct {
	Channel string
	Buffer  int
	// OnDrop is called for every event dropped because the buffer is full.
	OnDrop func()
}

// RedisSink publishes events as JSON on a channel and keeps a per-event
// counter. Handle never blocks: events are queued and dropped when the
// queue is full.
type RedisSink struct {
	broker  Broker
	channel string
	queue   chan event.Event
	onDrop  func()
	logger  *zap.Logger

	dropped atomic.Int64
	closing sync.Once
	done    chan struct{}
}

// NewRedisSink creates a sink and starts its publishing worker.
func NewRedisSink(broker Broker, cfg SinkConfig, logger *zap.Logger) *RedisSink {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RedisSink{
		broker:  broker,
		channel: cfg.Channel,
		queue:   make(chan event.Event, cfg.Buffer),
		onDrop:  cfg.OnDrop,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Handler returns the sink as an event.Handler.
func (s *RedisSink) Handler() event.Handler { return s.Handle }

// Handle queues e for publishing.
func (s *RedisSink) Handle(_ context.Context, e event.Event) {
	select {
	case s.queue <- e:
	default:
		s.dropped.Add(1)
		if s.onDrop != nil {
			s.onDrop()
		}
		s.logger.Warn("event dropped, sink buffer full", zap.String("event", string(e.Name)))
	}
}

// Dropped returns how many events were dropped.
func (s *RedisSink) Dropped() int64 { return s.dropped.Load() }

// Ping checks the broker.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.broker.Ping(ctx) //nolint:wrapcheck // health probe passes through
}

// Close stops accepting events, drains the queue and waits for the worker.
// Handle must not be called after Close.
func (s *RedisSink) Close() {
	s.closing.Do(func() { close(s.queue) })
	<-s.done
}

func (s *RedisSink) run() {
	defer close(s.done)
	for e := range s.queue {
		s.publish(e)
	}
}

func (s *RedisSink) publish(e event.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("marshal event", zap.String("event", string(e.Name)), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if _, err := s.broker.Publish(ctx, s.channel, payload); err != nil {
		s.logger.Warn("publish event", zap.String("event", string(e.Name)), zap.Error(err))
		return
	}
	if _, err := s.broker.IncrBy(ctx, counterPrefix+string(e.Name), 1); err != nil {
		s.logger.Warn("count event", zap.String("event", string(e.Name)), zap.Error(err))
	}
}
