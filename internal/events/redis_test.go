package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/recordex/internal/db/redis"
	"github.com/kailas-cloud/recordex/internal/domain/event"
)

// --- Mocks ---

type blockingBroker struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingBroker) Ping(context.Context) error { return nil }

func (b *blockingBroker) Publish(context.Context, string, []byte) (int64, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return 1, nil
}

func (b *blockingBroker) IncrBy(context.Context, string, int64) (int64, error) { return 1, nil }

// --- Tests ---

func TestRedisSink_PublishesAndCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "PUBLISH" || cmd[1] != "test.events" {
				return false
			}
			var e event.Event
			return json.Unmarshal([]byte(cmd[2]), &e) == nil && e.Name == event.DocumentDeleted
		})).
		Return(mock.Result(mock.RedisInt64(1)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "recordex:events:search.document.deleted", "1")).
		Return(mock.Result(mock.RedisInt64(1)))

	sink := NewRedisSink(redis.NewStoreForTest(c), SinkConfig{Channel: "test.events"}, nil)
	sink.Handle(context.Background(), event.New(event.DocumentDeleted, time.Now(), map[string]any{event.AttrID: "d1"}))
	sink.Close()

	if sink.Dropped() != 0 {
		t.Errorf("expected no drops, got %d", sink.Dropped())
	}
}

func TestRedisSink_PublishErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "PUBLISH" })).
		Return(mock.ErrorResult(errors.New("connection reset")))

	sink := NewRedisSink(redis.NewStoreForTest(c), SinkConfig{}, nil)
	sink.Handle(context.Background(), event.New(event.SearchExecuted, time.Now(), nil))
	sink.Close()
}

func TestRedisSink_DropsWhenFull(t *testing.T) {
	b := &blockingBroker{started: make(chan struct{}), release: make(chan struct{})}
	drops := 0
	sink := NewRedisSink(b, SinkConfig{Buffer: 1, OnDrop: func() { drops++ }}, nil)
	ctx := context.Background()

	sink.Handle(ctx, event.New(event.SearchExecuted, time.Now(), nil))
	<-b.started
	sink.Handle(ctx, event.New(event.SearchExecuted, time.Now(), nil)) // queued
	sink.Handle(ctx, event.New(event.SearchExecuted, time.Now(), nil)) // dropped

	if sink.Dropped() != 1 || drops != 1 {
		t.Errorf("Dropped() = %d, OnDrop calls = %d, want 1 and 1", sink.Dropped(), drops)
	}
	close(b.release)
	sink.Close()
}

func TestRedisSink_Ping(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))

	sink := NewRedisSink(redis.NewStoreForTest(c), SinkConfig{}, nil)
	defer sink.Close()
	if err := sink.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
