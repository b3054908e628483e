package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func ready(t *testing.T, h *Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestReady(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewHandler()
	h.RegisterChecker(NewStorageChecker("sqlite", stubPinger{}))
	h.RegisterChecker(NewRedisChecker(client))

	code, resp := ready(t, h)
	if code != http.StatusOK || resp.Status != "ready" {
		t.Fatalf("got %d %+v", code, resp)
	}
	if resp.Checks["sqlite"] != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("checks = %v", resp.Checks)
	}
}

func TestReady_Unhealthy(t *testing.T) {
	h := NewHandler()
	h.RegisterChecker(NewStorageChecker("postgres", stubPinger{err: errors.New("connection refused")}))
	h.RegisterChecker(NewStorageChecker("sqlite", nil))

	code, resp := ready(t, h)
	if code != http.StatusServiceUnavailable || resp.Status != "not_ready" {
		t.Fatalf("got %d %+v", code, resp)
	}
	if resp.Checks["postgres"] != "connection refused" {
		t.Errorf("checks = %v", resp.Checks)
	}
	if resp.Checks["sqlite"] != "database not initialized" {
		t.Errorf("checks = %v", resp.Checks)
	}
}

func TestHealthAndLive(t *testing.T) {
	h := NewHandler()
	for path, fn := range map[string]http.HandlerFunc{"/health": h.Health, "/health/live": h.Live} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestHealth_Version(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Version == "" {
		t.Errorf("resp = %+v", resp)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("probe answers must not be cached")
	}
}
