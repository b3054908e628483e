package middleware

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemory(2, ratelimit.DefaultWindow)
	handler := RateLimit(limiter, "test")(okHandler())

	for i, want := range []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Real-IP", "192.0.2.10")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && !strings.Contains(rec.Body.String(), MsgRateLimited) {
			t.Errorf("body = %q", rec.Body.String())
		}
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("unavailable")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	handler := RateLimit(brokenLimiter{}, "test")(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !strings.Contains(buf.String(), "unavailable") {
		t.Errorf("limiter error not logged: %q", buf.String())
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	var seenID string
	handler := RequestLogger(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if len(seenID) != 8 || rec.Header().Get("X-Request-ID") != seenID {
		t.Errorf("request id = %q, header = %q", seenID, rec.Header().Get("X-Request-ID"))
	}
	if buf.Len() != 0 {
		t.Errorf("successful request logged in quiet mode: %q", buf.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/fail", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !strings.Contains(buf.String(), "POST /fail 400") || !strings.Contains(buf.String(), "client=198.51.100.1") {
		t.Errorf("log = %q", buf.String())
	}
}
