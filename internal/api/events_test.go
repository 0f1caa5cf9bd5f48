package api

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
	"skywatch/crewdeck/internal/storage"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func testDependencies(t *testing.T) *Dependencies {
	t.Helper()
	db := setupTestDB(t)
	sqlDB, _ := db.DB()
	feed := realtime.NewMemoryFeed()
	c := cache.NewClient(cache.Options{RetryDelay: time.Millisecond})
	rt := realtime.NewManager(feed, bus.New(0), nil)
	return InitDependencies(db, sqlx.NewDb(sqlDB, "sqlite3"), c, feed, rt, storage.NewMemoryStore(""), nil)
}

func withClaims(h http.Handler, id string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.SetUserClaims(r.Context(), &auth.JWTClaims{UserUUID: id, RoleValue: constants.RolePilot})
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// readEvent returns the next "event:" name and its data line
func readEvent(t *testing.T, sc *bufio.Scanner) (string, string) {
	t.Helper()
	var name, data string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
	t.Fatalf("Stream ended early: %v", sc.Err())
	return "", ""
}

func TestEvents_StreamsInvalidationsAndReleasesChannels(t *testing.T) {
	deps := testDependencies(t)
	h := NewHandlers(deps)
	srv := httptest.NewServer(withClaims(h.Events(), "u1"))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?mission=m1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected event stream, got %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	if name, _ := readEvent(t, sc); name != "ready" {
		t.Fatalf("Expected ready event first, got %q", name)
	}

	if got := len(deps.Realtime.ActiveChannels()); got != 4 {
		t.Errorf("Expected profile, availability, certification and flight channels, got %v", deps.Realtime.ActiveChannels())
	}

	deps.Cache.SetQueryData(cache.NewKey(constants.KeyFlights, "m1"), []string{})
	deps.Cache.Invalidate(cache.NewKey(constants.KeyFlights))

	if name, data := readEvent(t, sc); name != "updated" || !strings.Contains(data, `"flights/m1"`) {
		t.Errorf("Expected update for flights/m1, got %q %s", name, data)
	}
	if name, data := readEvent(t, sc); name != "invalidated" || !strings.Contains(data, `"flights/m1"`) {
		t.Errorf("Expected invalidation for flights/m1, got %q %s", name, data)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for len(deps.Realtime.ActiveChannels()) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if left := deps.Realtime.ActiveChannels(); len(left) != 0 {
		t.Errorf("Expected channels released on disconnect, still have %v", left)
	}
}

func TestEvents_RequiresCaller(t *testing.T) {
	h := NewHandlers(testDependencies(t))
	rec := httptest.NewRecorder()
	h.Events()(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestEvents_HidesOtherUsersKeys(t *testing.T) {
	deps := testDependencies(t)
	h := NewHandlers(deps)
	srv := httptest.NewServer(withClaims(h.Events(), "u1"))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	if name, _ := readEvent(t, sc); name != "ready" {
		t.Fatalf("Expected ready event first, got %q", name)
	}

	deps.Cache.SetQueryData(cache.NewKey(constants.KeyAvailabilities, "u2"), []string{})
	deps.Cache.SetQueryData(cache.NewKey(constants.KeyUserTrainings, "u2"), []string{})
	deps.Cache.SetQueryData(cache.NewKey(constants.KeyAvailabilities, "u1"), []string{})

	if _, data := readEvent(t, sc); !strings.Contains(data, `"availabilities/u1"`) {
		t.Errorf("Expected only the caller's own key, got %s", data)
	}
}

func TestStreamScope(t *testing.T) {
	scope := streamScope("u1", "m1")
	cases := []struct {
		key  cache.Key
		want bool
	}{
		{cache.NewKey(constants.KeyProfile, "u1"), true},
		{cache.NewKey(constants.KeyProfile, "u2"), false},
		{cache.NewKey(constants.KeyTrainingsWithStatus, "u2"), false},
		{cache.NewKey(constants.KeyTeamStats), true},
		{cache.NewKey(constants.KeyMissions, "status=planned"), true},
		{cache.NewKey(constants.KeyFlights, "m1"), true},
		{cache.NewKey(constants.KeyFlights, "m2"), false},
	}
	for _, tc := range cases {
		if got := inScope(scope, tc.key); got != tc.want {
			t.Errorf("inScope(%s) = %v, want %v", tc.key, got, tc.want)
		}
	}
}
