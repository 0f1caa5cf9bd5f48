package realtime

import (
	"regexp"
	"testing"

	"skywatch/crewdeck/internal/constants"
)

func TestFilter_StringAndParse(t *testing.T) {
	f := Eq("user_id", "u-1")
	if f.String() != "user_id=eq.u-1" {
		t.Errorf("Unexpected filter string %q", f.String())
	}

	parsed, err := ParseFilter(f.String())
	if err != nil || parsed != f {
		t.Errorf("Expected %v, got %v (%v)", f, parsed, err)
	}

	for _, bad := range []string{"user_id", "=eq.x", "user_id=neq.x"} {
		if _, err := ParseFilter(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
	if zero, err := ParseFilter(""); err != nil || !zero.IsZero() {
		t.Errorf("Expected zero filter for empty string")
	}
}

func TestFilter_Matches(t *testing.T) {
	f := Eq("mission_id", "m1")

	insert := Change{Type: EventInsert, New: map[string]any{"mission_id": "m1"}}
	other := Change{Type: EventInsert, New: map[string]any{"mission_id": "m2"}}
	deleted := Change{Type: EventDelete, Old: map[string]any{"mission_id": "m1"}}
	movedOut := Change{Type: EventUpdate, New: map[string]any{"mission_id": "m2"}, Old: map[string]any{"mission_id": "m1"}}

	if !f.Matches(insert) || !f.Matches(deleted) || !f.Matches(movedOut) {
		t.Error("Expected filter to match rows of m1")
	}
	if f.Matches(other) {
		t.Error("Did not expect filter to match m2")
	}
	if !(Filter{}).Matches(other) {
		t.Error("Expected zero filter to match everything")
	}
}

func TestChannelName(t *testing.T) {
	if got := ChannelName(constants.TableMissions, Filter{}); got != "missions-changes" {
		t.Errorf("Expected missions-changes, got %q", got)
	}

	name := ChannelName(constants.TableAvailabilities, Eq("user_id", "u1"))
	if !regexp.MustCompile(`^availabilities-user-id-eq-u1-[0-9a-f]{8}$`).MatchString(name) {
		t.Errorf("Unexpected channel name %q", name)
	}
	if name != ChannelName(constants.TableAvailabilities, Eq("user_id", "u1")) {
		t.Error("Expected channel name to be deterministic")
	}

	// both sanitise to user-id-eq-a-b
	a := ChannelName(constants.TableAvailabilities, Eq("user_id", "a.b"))
	b := ChannelName(constants.TableAvailabilities, Eq("user_id", "a-b"))
	if a == b {
		t.Errorf("Expected distinct names for distinct filters, both %q", a)
	}
}
