// Package db defines the narrow contracts of the external key-value store
// used for event fan-out.
package db

import (
	"context"
	"time"
)

// Store is the facade combining all sub-interfaces.
type Store interface {
	Pinger
	Publisher
	Counter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Publisher sends a message to a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (receivers int64, err error)
}

// Counter maintains integer counters.
type Counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}
