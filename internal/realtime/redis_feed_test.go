package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"skywatch/crewdeck/internal/constants"
)

func newTestRedisFeed(t *testing.T) (*RedisFeed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFeed(client, nil), mr
}

func TestRedisFeed_PublishSubscribe(t *testing.T) {
	feed, _ := newTestRedisFeed(t)
	ctx := context.Background()

	received := make(chan Change, 1)
	unsub, err := feed.Subscribe(ctx, constants.TableFlights, func(c Change) { received <- c })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	sent := Change{
		Table: constants.TableFlights,
		Type:  EventInsert,
		New:   map[string]any{"mission_id": "m1", "duration_minutes": float64(45)},
	}
	if err := feed.Publish(ctx, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.Type != EventInsert || got.New["mission_id"] != "m1" {
			t.Errorf("Unexpected change %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for change")
	}
}

func TestRedisFeed_SkipsUndecodablePayloads(t *testing.T) {
	feed, mr := newTestRedisFeed(t)
	ctx := context.Background()

	received := make(chan Change, 2)
	unsub, err := feed.Subscribe(ctx, constants.TableProfiles, func(c Change) { received <- c })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	mr.Publish("realtime:profiles", "not json")
	if err := feed.Publish(ctx, Change{Table: constants.TableProfiles, Type: EventUpdate}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.Type != EventUpdate {
			t.Errorf("Expected the valid update, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for change")
	}

	if err := unsub(); err != nil {
		t.Errorf("unsubscribe: %v", err)
	}
	if err := unsub(); err != nil {
		t.Errorf("Expected repeated unsubscribe to be harmless, got %v", err)
	}
}

func TestRedisFeed_DrivesManager(t *testing.T) {
	feed, _ := newTestRedisFeed(t)
	pub := &recordingPublisher{}
	m := NewManager(feed, pub, nil)
	defer m.Close()

	sub := m.Subscribe(context.Background(), FlightsForMission("m1"))
	defer sub.Close()

	if err := feed.Publish(context.Background(), Change{
		Table: constants.TableFlights,
		Type:  EventInsert,
		New:   map[string]any{"mission_id": "m1"},
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.keys()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	got := pub.keys()
	if len(got) != 2 || got[0] != "flights/m1" || got[1] != "team-stats" {
		t.Errorf("Expected flights/m1 and team-stats, got %v", got)
	}
}
