package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/metrics"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

// Mock ProfileEnsurer
type mockProfiles struct {
	ensureFunc func(ctx context.Context, id, email string) (*gormModels.Profile, error)
}

func (m *mockProfiles) EnsureProfile(ctx context.Context, id, email string) (*gormModels.Profile, error) {
	return m.ensureFunc(ctx, id, email)
}

func chiefProfiles() *mockProfiles {
	return &mockProfiles{
		ensureFunc: func(ctx context.Context, id, email string) (*gormModels.Profile, error) {
			return &gormModels.Profile{ID: id, Email: email, Role: constants.RoleChief}, nil
		},
	}
}

func okHandler(seen *auth.UserClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = auth.GetUserClaims(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", "crewdeck")
	h := AuthMiddleware(issuer, chiefProfiles())(okHandler(nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", "crewdeck")
	h := AuthMiddleware(issuer, chiefProfiles())(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RoleComesFromProfile(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", "crewdeck")
	raw, err := issuer.Issue("u1", "chief@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen auth.UserClaims
	h := AuthMiddleware(issuer, chiefProfiles())(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.UserID() != "u1" || seen.Role() != constants.RoleChief {
		t.Errorf("Unexpected claims %+v", seen)
	}
}

func TestAuthMiddleware_AcceptsQueryToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", "crewdeck")
	raw, _ := issuer.Issue("u1", "pilot@example.com", time.Hour)
	h := AuthMiddleware(issuer, chiefProfiles())(okHandler(nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?access_token="+raw, nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
}

func TestRequireCapability(t *testing.T) {
	h := RequireCapability(auth.ActionCreateMission)(okHandler(nil))

	cases := []struct {
		name   string
		claims auth.UserClaims
		want   int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"pilot", &auth.JWTClaims{UserUUID: "u1", RoleValue: constants.RolePilot}, http.StatusForbidden},
		{"chief", &auth.JWTClaims{UserUUID: "u2", RoleValue: constants.RoleChief}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/missions", nil)
			if tc.claims != nil {
				req = req.WithContext(auth.SetUserClaims(req.Context(), tc.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(okHandler(nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/missions", nil)
		req.RemoteAddr = "10.0.0.5:4242"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/missions", nil)
	req.RemoteAddr = "10.0.0.6:4242"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected a separate bucket per IP, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || rec.Header().Get("X-Request-ID") != got {
		t.Errorf("Expected generated request id echoed, got %q / %q", got, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "abc" {
		t.Errorf("Expected incoming id kept, got %q", got)
	}
}

func TestMetricsMiddleware_PassesFlusher(t *testing.T) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	flushed := false
	h := MetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("Expected wrapped writer to implement http.Flusher")
		}
		f.Flush()
		flushed = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if !flushed {
		t.Error("Expected handler to run")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	got := NormalizeEndpoint("/api/v1/missions/3f2b6a1e-8c1d-4f0a-9d7e-1a2b3c4d5e6f/flights")
	if got != "/api/v1/missions/{id}/flights" {
		t.Errorf("Unexpected normalized path %q", got)
	}
	if NormalizeEndpoint("/api/v1/missions/upcoming") != "/api/v1/missions/upcoming" {
		t.Error("Expected named segments kept")
	}
}
