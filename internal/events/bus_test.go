package events

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/recordex/internal/domain/event"
)

func TestBus_DeliversInOrder(t *testing.T) {
	b := NewBus(nil)
	var got []string
	b.Subscribe(func(_ context.Context, e event.Event) { got = append(got, "a:"+string(e.Name)) })
	b.Subscribe(func(_ context.Context, e event.Event) { got = append(got, "b:"+string(e.Name)) })
	b.Subscribe(nil)

	b.Emit(context.Background(), event.New(event.DocumentIndexed, time.Now(), nil))

	want := []string{"a:search.document.indexed", "b:search.document.indexed"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBus_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBus(zap.New(core))
	delivered := false
	b.Subscribe(func(context.Context, event.Event) { panic("boom") })
	b.Subscribe(func(context.Context, event.Event) { delivered = true })

	b.Emit(context.Background(), event.New(event.SearchExecuted, time.Now(), nil))

	if !delivered {
		t.Error("subscriber after a panicking one was skipped")
	}
	if logs.FilterMessage("event subscriber panicked").Len() != 1 {
		t.Errorf("expected one panic log, got %v", logs.All())
	}
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := LogHandler(zap.New(core))

	h(context.Background(), event.New(event.IndexCleared, time.Now(), map[string]any{event.AttrType: "INVOICE"}))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["event"] != string(event.IndexCleared) || ctx[event.AttrType] != "INVOICE" {
		t.Errorf("unexpected log fields %v", ctx)
	}
}
