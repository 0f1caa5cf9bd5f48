package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChildLoggersCarryFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := globalLogger
	UseLogger(zap.New(core).Sugar())
	defer UseLogger(prev)

	Named("invalidation_worker").Infow("Applied invalidation")
	WithRequest("req-1", "u1", "/api/v1/events").Infow("Event stream opened")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["component"]; got != "invalidation_worker" {
		t.Errorf("Expected component field, got %v", got)
	}
	ctx := entries[1].ContextMap()
	if ctx["request_id"] != "req-1" || ctx["user_id"] != "u1" || ctx["endpoint"] != "/api/v1/events" {
		t.Errorf("Expected request fields, got %v", ctx)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	prev := globalLogger
	defer UseLogger(prev)
	if err := Init("development", "loud"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
