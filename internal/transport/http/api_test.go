package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"n5-drill-service/internal/domain"
	"n5-drill-service/internal/infra/memory"
)

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t, nil)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	server, _ := newTestServer(t, nil)

	var profile map[string]any
	if code := doJSON(t, http.MethodGet, server.URL+"/api/me", memory.DemoUserID, "", &profile); code != http.StatusOK {
		t.Fatalf("get profile: %d", code)
	}
	if profile["nombre"] != "Demo" || profile["level"] != float64(1) {
		t.Fatalf("unexpected profile: %v", profile)
	}

	if code := doJSON(t, http.MethodPatch, server.URL+"/api/me", memory.DemoUserID, `{"nombre":"  Hana  "}`, &profile); code != http.StatusOK {
		t.Fatalf("patch profile: %d", code)
	}
	if profile["nombre"] != "Hana" {
		t.Fatalf("expected trimmed name, got %v", profile["nombre"])
	}

	if code := doJSON(t, http.MethodPatch, server.URL+"/api/me", memory.DemoUserID, `{"nombre":"   "}`, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", code)
	}
	if code := doJSON(t, http.MethodPatch, server.URL+"/api/me", memory.DemoUserID, `{`, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, server.URL+"/api/me", "ghost", "", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", code)
	}
	if code := doJSON(t, http.MethodGet, server.URL+"/api/me", "", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", code)
	}
}

func TestWeeklyRankingEndpoint(t *testing.T) {
	server, store := newTestServer(t, nil)
	if err := store.SaveAttempt(context.Background(), domain.Attempt{UserID: memory.DemoUserID, ExerciseID: "ex-01", Correct: true, Points: 15}); err != nil {
		t.Fatalf("save attempt: %v", err)
	}

	var body struct {
		Entries   []domain.RankingEntry `json:"entries"`
		Available bool                  `json:"available"`
	}
	if code := doJSON(t, http.MethodGet, server.URL+"/api/ranking/weekly", memory.DemoUserID, "", &body); code != http.StatusOK {
		t.Fatalf("ranking: %d", code)
	}
	if !body.Available || len(body.Entries) != 1 {
		t.Fatalf("unexpected ranking: %+v", body)
	}
	if e := body.Entries[0]; e.UserID != memory.DemoUserID || e.Name != "Demo" || e.TotalPoints != 15 || e.TotalCorrect != 1 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestWeeklyRankingDegrades(t *testing.T) {
	store := memory.NewStore()
	store.PutUser(memory.DemoUser())
	server := newTestServerWith(t, nil, store, brokenAttempts{})

	var body map[string]any
	if code := doJSON(t, http.MethodGet, server.URL+"/api/ranking/weekly", memory.DemoUserID, "", &body); code != http.StatusOK {
		t.Fatalf("ranking: %d", code)
	}
	if body["available"] != false {
		t.Fatalf("expected unavailable ranking, got %v", body)
	}
	if entries, ok := body["entries"].([]any); !ok || len(entries) != 0 {
		t.Fatalf("expected empty entries array, got %v", body["entries"])
	}
}

type brokenAttempts struct{}

func (brokenAttempts) SaveAttempt(context.Context, domain.Attempt) error {
	return errors.New("attempts table unavailable")
}

func (brokenAttempts) AttemptsSince(context.Context, time.Time) ([]domain.AttemptRow, error) {
	return nil, errors.New("attempts table unavailable")
}

func doJSON(t *testing.T, method, url, userID, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

