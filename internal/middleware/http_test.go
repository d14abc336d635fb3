package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"buildingportal/internal/auth"
	"buildingportal/internal/models"
	"buildingportal/internal/rate"
	"buildingportal/internal/service"
)

func TestClientIPTrustProxy(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:12345"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.5")

	if got := ClientIP(r, false); got != "10.0.0.5" {
		t.Fatalf("unexpected direct IP: %s", got)
	}
	if got := ClientIP(r, true); got != "1.2.3.4" {
		t.Fatalf("unexpected proxied IP: %s", got)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"missing":      {"", "", false},
		"basic":        {"Basic abc", "", false},
		"empty bearer": {"Bearer ", "", false},
		"ok":           {"Bearer abc.def.ghi", "abc.def.ghi", true},
		"lowercase":    {"bearer abc", "abc", true},
	}
	for name, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, ok := BearerToken(r)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s: got (%q, %v), want (%q, %v)", name, got, ok, tc.want, tc.ok)
		}
	}
}

type stubAuthenticator struct {
	claims auth.Claims
	err    error
}

func (s stubAuthenticator) Authenticate(string) (auth.Claims, error) { return s.claims, s.err }

func TestAuthnStatusCodes(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, found := Claims(r.Context())
		if !found || c.UserID != "u-1" {
			t.Fatalf("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		a      stubAuthenticator
		status int
	}{
		{"no header", "", stubAuthenticator{}, http.StatusUnauthorized},
		{"expired", "Bearer t", stubAuthenticator{err: service.ErrExpired}, http.StatusUnauthorized},
		{"invalid", "Bearer t", stubAuthenticator{err: errors.New("bad")}, http.StatusUnauthorized},
		{"valid", "Bearer t", stubAuthenticator{claims: auth.Claims{UserID: "u-1"}}, http.StatusNoContent},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		Authn(tc.a)(ok).ServeHTTP(rr, r)
		if rr.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.name, tc.status, rr.Code, rr.Body.String())
		}
	}
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	l := rate.NewLimiter()
	h := RateLimit(l, "login", 1, time.Minute, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest("POST", "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest("POST", "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestIDMiddleware(RequestLogger(zap.New(core), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/complaints/x", nil))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(404) {
		t.Fatalf("unexpected status field: %v", fields["status"])
	}
	if fields["path"] != "/api/complaints/x" {
		t.Fatalf("unexpected path field: %v", fields["path"])
	}
}

type stubGuard struct{ err error }

func (g stubGuard) RequireAdmin(context.Context, auth.Claims) (models.User, error) {
	return models.User{Role: models.RoleAdmin}, g.err
}

func TestAdminOnlyStatusCodes(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name     string
		claims   bool
		guard    stubGuard
		status   int
		reachesH bool
	}{
		{"no claims", false, stubGuard{}, http.StatusUnauthorized, false},
		{"resident", true, stubGuard{err: service.ErrForbidden}, http.StatusForbidden, false},
		{"store failure", true, stubGuard{err: errors.New("db down")}, http.StatusInternalServerError, false},
		{"admin", true, stubGuard{}, http.StatusNoContent, true},
	}
	for _, tc := range cases {
		reached = false
		r := httptest.NewRequest("PATCH", "/api/admin/complaints/x/status", nil)
		if tc.claims {
			r = r.WithContext(WithClaims(r.Context(), auth.Claims{UserID: "u-1"}))
		}
		rr := httptest.NewRecorder()
		AdminOnly(tc.guard, zap.NewNop())(next).ServeHTTP(rr, r)
		if rr.Code != tc.status || reached != tc.reachesH {
			t.Fatalf("%s: got status %d reached=%v, want %d reached=%v", tc.name, rr.Code, reached, tc.status, tc.reachesH)
		}
	}
}
