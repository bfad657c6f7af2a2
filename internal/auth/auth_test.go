package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"n5-drill-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", "n5-drill", time.Hour)
	tok, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %q", sub)
	}
}

func TestTokenRejected(t *testing.T) {
	base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	now := base
	clock := func() time.Time { return now }

	svc := NewTokenServiceWithClock("secret", "n5-drill", time.Hour, clock)
	tok, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name  string
		svc   *TokenService
		token string
		at    time.Time
	}{
		{name: "wrong secret", svc: NewTokenServiceWithClock("other", "n5-drill", time.Hour, clock), token: tok, at: base},
		{name: "wrong issuer", svc: NewTokenServiceWithClock("secret", "someone-else", time.Hour, clock), token: tok, at: base},
		{name: "expired", svc: svc, token: tok, at: base.Add(2 * time.Hour)},
		{name: "garbage", svc: svc, token: "not-a-jwt", at: base},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			now = tc.at
			defer func() { now = base }()
			if _, err := tc.svc.Parse(tc.token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestMiddlewareReadsBearerAndQuery(t *testing.T) {
	svc := NewTokenService("secret", "", time.Hour)
	tok, err := svc.Issue("user-7")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen string
	h := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "user-7" {
		t.Fatalf("bearer: code=%d user=%q", rec.Code, seen)
	}

	seen = ""
	req = httptest.NewRequest(http.MethodGet, "/ws/practice?access_token="+tok, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "user-7" {
		t.Fatalf("query: code=%d user=%q", rec.Code, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestHeaderAuthenticator(t *testing.T) {
	var a HeaderAuthenticator

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("X-User-ID", " demo ")
	if id, err := a.Authenticate(req); err != nil || id != "demo" {
		t.Fatalf("header: got %q, %v", id, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws/practice?userId=demo", nil)
	if id, err := a.Authenticate(req); err != nil || id != "demo" {
		t.Fatalf("query: got %q, %v", id, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if _, err := a.Authenticate(req); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
