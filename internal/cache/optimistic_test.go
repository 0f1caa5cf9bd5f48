package cache

import (
	"context"
	"errors"
	"testing"
)

type profile struct {
	Name string
}

func rename(prev profile, name string) profile {
	prev.Name = name
	return prev
}

func TestOptimistic_VisibleBeforeCommitAndRevertedOnFailure(t *testing.T) {
	c, _ := newTestClient()
	key := NewKey("profile", "u1")
	c.SetQueryData(key, profile{Name: "Ana"})

	var seenDuringCommit any
	failure := errors.New("write rejected")

	_, err := Optimistic(context.Background(), c, Mutation[profile, string]{
		Key:   key,
		Patch: "Ana B.",
		Apply: rename,
		Commit: func(ctx context.Context, patch string) (profile, error) {
			seenDuringCommit, _ = c.GetQueryData(key)
			return profile{}, failure
		},
		Settle: []Key{NewKey("profiles")},
	})

	if !errors.Is(err, failure) {
		t.Fatalf("Expected commit error unchanged, got %v", err)
	}
	if seenDuringCommit != (profile{Name: "Ana B."}) {
		t.Errorf("Expected speculative value during commit, got %v", seenDuringCommit)
	}
	if v, _ := c.GetQueryData(key); v != (profile{Name: "Ana"}) {
		t.Errorf("Expected snapshot restored, got %v", v)
	}
	if st, _ := c.State(key); !st.IsStale {
		t.Error("Expected key invalidated on settle")
	}
}

func TestOptimistic_SuccessInvalidatesSettleKeys(t *testing.T) {
	c, _ := newTestClient()
	key := NewKey("profile", "u1")
	team := NewKey("profiles")
	c.SetQueryData(key, profile{Name: "Ana"})
	c.SetQueryData(team, []profile{{Name: "Ana"}})

	res, err := Optimistic(context.Background(), c, Mutation[profile, string]{
		Key:   key,
		Patch: "Ana B.",
		Apply: rename,
		Commit: func(ctx context.Context, patch string) (profile, error) {
			return profile{Name: patch}, nil
		},
		Settle: []Key{team},
	})
	if err != nil || res.Name != "Ana B." {
		t.Fatalf("Expected committed row, got %v, %v", res, err)
	}
	if st, _ := c.State(team); !st.IsStale {
		t.Error("Expected team list invalidated")
	}
}

func TestOptimistic_NoSnapshotStillCommits(t *testing.T) {
	c, _ := newTestClient()
	committed := false

	_, err := Optimistic(context.Background(), c, Mutation[profile, string]{
		Key:   NewKey("profile", "u9"),
		Patch: "x",
		Apply: rename,
		Commit: func(ctx context.Context, patch string) (profile, error) {
			committed = true
			return profile{Name: patch}, nil
		},
	})
	if err != nil || !committed {
		t.Fatalf("Expected commit without cached snapshot, got %v", err)
	}
	if _, ok := c.GetQueryData(NewKey("profile", "u9")); ok {
		t.Error("Expected nothing speculative written without a snapshot")
	}
}
