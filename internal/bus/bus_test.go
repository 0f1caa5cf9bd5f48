package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"skywatch/crewdeck/internal/cache"
)

func TestBus_PublishAndConsume(t *testing.T) {
	b := New(2)
	ev := Event{Key: cache.NewKey("team-stats"), Source: SourcePoll}

	if err := b.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("Expected 1 queued event, got %d", b.Len())
	}

	got := <-b.Events()
	if !got.Key.Equal(ev.Key) || got.Source != SourcePoll {
		t.Errorf("Unexpected event %+v", got)
	}
}

func TestBus_PublishRespectsContextWhenFull(t *testing.T) {
	b := New(1)
	_ = b.Publish(context.Background(), Event{Key: cache.NewKey("a")})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Publish(ctx, Event{Key: cache.NewKey("b")}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded on a full bus, got %v", err)
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	b := New(1)
	b.Close()
	b.Close()
	if err := b.Publish(context.Background(), Event{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
