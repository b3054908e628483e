package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
	"github.com/good-yellow-bee/anfrage/internal/relay"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

// mockRepo is an in-memory RequestRepository.
type mockRepo struct {
	mu   sync.Mutex
	rows []*models.ProjectRequest
	err  error
}

func (m *mockRepo) Create(ctx context.Context, req *models.ProjectRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	req.ID = "req-1"
	m.rows = append(m.rows, req)
	return nil
}

func (m *mockRepo) ListRecent(ctx context.Context, limit int) ([]*models.ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows, nil
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

// mockNotifier counts relay attempts.
type mockNotifier struct {
	mu    sync.Mutex
	calls []*models.Summary
	err   error
}

func (m *mockNotifier) Notify(ctx context.Context, summary *models.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, summary)
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockMirror records mirrored requests.
type mockMirror struct {
	got []models.LocalRequest
	err error
}

func (m *mockMirror) AppendRequest(req models.LocalRequest) error {
	m.got = append(m.got, req)
	return m.err
}

// failingLimiter always errors.
type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis down")
}

const fullPayload = `{
	"projectType": "Website",
	"industry": "Coaching",
	"hasExistingWebsite": "no",
	"primaryGoal": "Mehr Anfragen",
	"targetAudience": "Solo-Coaches",
	"features": ["Terminbuchung"],
	"budget": "< 1.000 €",
	"timeline": "ASAP",
	"contactName": "Mia",
	"contactEmail": "mia@example.com",
	"contactPhone": "+49 170 1234567",
	"preferredContact": "E-Mail",
	"consent": true,
	"website": ""
}`

func withField(t *testing.T, base, field string, value any) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(base), &m); err != nil {
		t.Fatal(err)
	}
	m[field] = value
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

type testEnv struct {
	handler  *Handler
	repo     *mockRepo
	notifier *mockNotifier
	mirror   *mockMirror
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:     &mockRepo{},
		notifier: &mockNotifier{},
		mirror:   &mockMirror{},
	}
	env.handler = NewHandler(env.repo, env.mirror, env.notifier, Config{})
	return env
}

type response struct {
	Message string             `json:"message"`
	Issues  *validation.Issues `json:"issues"`
}

func post(t *testing.T, h http.HandlerFunc, body, ip string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/project-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	var resp response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, resp
}

func TestSubmitFull_Success(t *testing.T) {
	env := newTestEnv()

	code, resp := post(t, env.handler.SubmitFull, fullPayload, "203.0.113.1")
	if code != http.StatusOK || resp.Message != MsgSuccess {
		t.Fatalf("got %d %q, want 200 %q", code, resp.Message, MsgSuccess)
	}
	if len(env.repo.rows) != 1 {
		t.Fatalf("stored rows = %d, want 1", len(env.repo.rows))
	}
	if env.notifier.count() != 1 {
		t.Errorf("notification attempts = %d, want 1", env.notifier.count())
	}

	row := env.repo.rows[0]
	if row.Flow != models.FlowFull || row.HasExistingWebsite || row.BudgetRange != "< 1.000 €" {
		t.Errorf("row = %+v", row)
	}
	if len(env.mirror.got) != 1 || env.mirror.got[0].ContactName != "Mia" {
		t.Errorf("mirror = %+v", env.mirror.got)
	}
	if s := env.notifier.calls[0]; s.ContactEmail != "mia@example.com" || s.Budget != "< 1.000 €" {
		t.Errorf("summary = %+v", s)
	}
}

func TestSubmitFull_Honeypot(t *testing.T) {
	env := newTestEnv()
	body := withField(t, fullPayload, "website", "http://spam.example")

	code, resp := post(t, env.handler.SubmitFull, body, "203.0.113.2")
	if code != http.StatusBadRequest || resp.Message != MsgRejected {
		t.Fatalf("got %d %q, want 400 %q", code, resp.Message, MsgRejected)
	}
	if len(env.repo.rows) != 0 || env.notifier.count() != 0 {
		t.Error("honeypot submission must not be stored or notified")
	}
}

func TestSubmitFull_HoneypotHidesIssues(t *testing.T) {
	env := newTestEnv()
	body := withField(t, fullPayload, "website", "x")
	body = withField(t, body, "contactEmail", "not-an-email")

	code, resp := post(t, env.handler.SubmitFull, body, "203.0.113.3")
	if code != http.StatusBadRequest || resp.Message != MsgRejected {
		t.Fatalf("got %d %q", code, resp.Message)
	}
	if !resp.Issues.Empty() {
		t.Errorf("issues = %v, want none", resp.Issues)
	}
}

func TestSubmitFull_InvalidEmail(t *testing.T) {
	env := newTestEnv()
	body := withField(t, fullPayload, "contactEmail", "not-an-email")

	code, resp := post(t, env.handler.SubmitFull, body, "203.0.113.4")
	if code != http.StatusBadRequest || resp.Message != MsgInvalid {
		t.Fatalf("got %d %q, want 400 %q", code, resp.Message, MsgInvalid)
	}
	if !resp.Issues.Has("contactEmail") {
		t.Errorf("issues = %v, want contactEmail", resp.Issues)
	}
	if len(env.repo.rows) != 0 {
		t.Error("invalid submission must not be stored")
	}
}

func TestSubmitFull_ExistingWebsiteNeedsURL(t *testing.T) {
	env := newTestEnv()
	body := withField(t, fullPayload, "hasExistingWebsite", "yes")

	code, resp := post(t, env.handler.SubmitFull, body, "203.0.113.5")
	if code != http.StatusBadRequest || !resp.Issues.Has("existingWebsiteUrl") {
		t.Fatalf("got %d %v", code, resp.Issues)
	}
}

func TestSubmitFull_RateLimit(t *testing.T) {
	env := newTestEnv()
	invalid := withField(t, fullPayload, "contactEmail", "nope")

	// Two valid, three invalid: all count against the window.
	bodies := []string{fullPayload, invalid, fullPayload, invalid, invalid}
	for i, body := range bodies {
		code, _ := post(t, env.handler.SubmitFull, body, "198.51.100.7, 10.0.0.1")
		if code == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited too early", i+1)
		}
	}

	code, resp := post(t, env.handler.SubmitFull, fullPayload, "198.51.100.7")
	if code != http.StatusTooManyRequests || resp.Message != MsgRateLimited {
		t.Fatalf("6th request = %d %q, want 429", code, resp.Message)
	}
	if len(env.repo.rows) != 2 {
		t.Errorf("stored rows = %d, want 2", len(env.repo.rows))
	}

	// Other clients and the lite keyspace are unaffected.
	if code, _ := post(t, env.handler.SubmitFull, fullPayload, "198.51.100.8"); code != http.StatusOK {
		t.Errorf("other client = %d, want 200", code)
	}
	lite := `{"contactEmail":"mia@example.com","contactPhone":"0171 123456"}`
	if code, _ := post(t, env.handler.SubmitLite, lite, "198.51.100.7"); code != http.StatusOK {
		t.Errorf("lite endpoint = %d, want 200", code)
	}
}

func TestSubmitFull_LimiterErrorFailsOpen(t *testing.T) {
	env := newTestEnv()
	env.handler = NewHandler(env.repo, nil, env.notifier, Config{FullLimiter: failingLimiter{}})

	if code, _ := post(t, env.handler.SubmitFull, fullPayload, ""); code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestSubmitFull_StoreError(t *testing.T) {
	env := newTestEnv()
	env.repo.err = errors.New("disk full")

	code, resp := post(t, env.handler.SubmitFull, fullPayload, "")
	if code != http.StatusInternalServerError || resp.Message != MsgStoreFailed {
		t.Fatalf("got %d %q", code, resp.Message)
	}
	if env.notifier.count() != 0 {
		t.Error("failed insert must not notify")
	}
}

func TestSubmitFull_NotifyFailureStillSucceeds(t *testing.T) {
	for _, err := range []error{errors.New("relay down"), relay.ErrSkipped} {
		env := newTestEnv()
		env.notifier.err = err
		env.mirror.err = errors.New("read-only fs")

		code, resp := post(t, env.handler.SubmitFull, fullPayload, "")
		if code != http.StatusOK || resp.Message != MsgSuccess {
			t.Errorf("notify err %v: got %d %q", err, code, resp.Message)
		}
	}
}

func TestSubmitFull_MalformedJSON(t *testing.T) {
	env := newTestEnv()
	for _, body := range []string{"{", "", `{"features": "Terminbuchung"}`} {
		code, resp := post(t, env.handler.SubmitFull, body, "")
		if code != http.StatusBadRequest || resp.Message != MsgInvalid {
			t.Errorf("body %q: got %d %q", body, code, resp.Message)
		}
	}
}

func TestSubmitFull_OversizedBody(t *testing.T) {
	env := newTestEnv()
	body := `{"description":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	code, resp := post(t, env.handler.SubmitFull, body, "")
	if code != http.StatusBadRequest || resp.Message != MsgInvalid {
		t.Errorf("got %d %q, want 400 %q", code, resp.Message, MsgInvalid)
	}
	if env.notifier.count() != 0 {
		t.Error("oversized body reached the notifier")
	}
}

func TestSubmitFull_Normalizes(t *testing.T) {
	env := newTestEnv()
	body := withField(t, fullPayload, "industry", "  Coaching   und   Beratung ")
	body = withField(t, body, "features", []string{" Terminbuchung ", "Terminbuchung", "Automationen"})

	if code, resp := post(t, env.handler.SubmitFull, body, ""); code != http.StatusOK {
		t.Fatalf("got %d %+v", code, resp)
	}
	row := env.repo.rows[0]
	if row.Industry != "Coaching und Beratung" {
		t.Errorf("Industry = %q", row.Industry)
	}
	if len(row.Features) != 2 || row.Features[0] != "Terminbuchung" || row.Features[1] != "Automationen" {
		t.Errorf("Features = %v", row.Features)
	}
}

func TestSubmitLite(t *testing.T) {
	env := newTestEnv()
	body := `{
		"projectType": "Website",
		"features": ["  Shop ", "", "Newsletter"],
		"featureNotes": "mit Gutscheinen",
		"contactName": null,
		"contactEmail": "lea@example.com",
		"contactPhone": "0171 1234567",
		"website": ""
	}`

	code, resp := post(t, env.handler.SubmitLite, body, "")
	if code != http.StatusOK || resp.Message != MsgSuccess {
		t.Fatalf("got %d %q", code, resp.Message)
	}

	row := env.repo.rows[0]
	if row.Flow != models.FlowLite || !row.Consent || row.HasExistingWebsite {
		t.Errorf("row = %+v", row)
	}
	if row.Industry != models.NotSpecified || row.BudgetRange != models.NotSpecified || row.ContactName != models.NotSpecified {
		t.Errorf("defaults = %q %q %q", row.Industry, row.BudgetRange, row.ContactName)
	}
	if len(row.Features) != 2 || row.Features[0] != "Shop" {
		t.Errorf("Features = %v", row.Features)
	}
	if row.Description != "mit Gutscheinen" {
		t.Errorf("Description = %q", row.Description)
	}
}

func TestSubmitLite_Issues(t *testing.T) {
	env := newTestEnv()
	body := `{"contactEmail":"lea@example.com","contactPhone":"12-34"}`

	code, resp := post(t, env.handler.SubmitLite, body, "")
	if code != http.StatusBadRequest || !resp.Issues.Has("contactPhone") {
		t.Fatalf("got %d %v", code, resp.Issues)
	}

	code, resp = post(t, env.handler.SubmitLite, `{"contactPhone":"0171 1234567","website":"bot"}`, "")
	if code != http.StatusBadRequest || resp.Message != MsgRejected {
		t.Fatalf("honeypot: got %d %q", code, resp.Message)
	}
}

func TestSubmitLite_StoreError(t *testing.T) {
	env := newTestEnv()
	env.repo.err = errors.New("boom")

	code, resp := post(t, env.handler.SubmitLite, `{"contactEmail":"lea@example.com","contactPhone":"0171 1234567"}`, "")
	if code != http.StatusInternalServerError || resp.Message != MsgStoreFailedLit {
		t.Fatalf("got %d %q", code, resp.Message)
	}
}

func TestNewHandler_SeparateLimiters(t *testing.T) {
	h := NewHandler(&mockRepo{}, nil, nil, Config{})
	if h.config.FullLimiter == h.config.LiteLimiter {
		t.Error("full and lite endpoints must not share a limiter")
	}
	if _, ok := h.config.FullLimiter.(*ratelimit.Memory); !ok {
		t.Errorf("default limiter = %T, want *ratelimit.Memory", h.config.FullLimiter)
	}
}
