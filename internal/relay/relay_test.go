package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/notifier"
)

// mockSender records messages; failOn makes the n-th send (1-based) fail.
type mockSender struct {
	mu     sync.Mutex
	sent   []*notifier.Message
	failOn int
}

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) Send(ctx context.Context, msg *notifier.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == len(m.sent)+1 {
		return errors.New("provider down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSender) Close() error { return nil }

func (m *mockSender) messages() []*notifier.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*notifier.Message(nil), m.sent...)
}

func sampleSummary() *models.Summary {
	return &models.Summary{
		ProjectType:      "Website",
		Industry:         "Friseur",
		Budget:           "1.000–3.000 €",
		Timeline:         "ASAP",
		Features:         []string{"Terminbuchung"},
		ContactName:      "Mia",
		ContactEmail:     "mia@example.com",
		PreferredContact: "E-Mail",
	}
}

func newTestService(t *testing.T, sender notifier.Sender, config Config) *Service {
	t.Helper()
	templates, err := notifier.LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	return NewService(sender, templates, config)
}

var testConfig = Config{To: "ops@example.com", From: "Anfragen <noreply@example.com>"}

func TestService_Notify(t *testing.T) {
	sender := &mockSender{}
	svc := newTestService(t, sender, testConfig)

	if err := svc.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	msgs := sender.messages()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}

	op := msgs[0]
	if op.To[0] != "ops@example.com" || op.Subject != "Neue Projektanfrage von Mia" {
		t.Errorf("operator message = %+v", op)
	}
	if op.ReplyTo != "mia@example.com" {
		t.Errorf("operator ReplyTo = %q", op.ReplyTo)
	}
	if !strings.Contains(op.HTML, "Terminbuchung") || !strings.Contains(op.HTML, "—") {
		t.Errorf("operator html = %q", op.HTML)
	}

	ack := msgs[1]
	if ack.To[0] != "mia@example.com" || ack.Subject != notifier.ApplicantSubject {
		t.Errorf("applicant message = %+v", ack)
	}
	if ack.From != testConfig.From || ack.ReplyTo != "" {
		t.Errorf("From = %q", ack.From)
	}
}

func TestService_NotifyInvalidSummary(t *testing.T) {
	sender := &mockSender{}
	svc := newTestService(t, sender, testConfig)

	s := sampleSummary()
	s.ContactEmail = "nope"
	if err := svc.Notify(context.Background(), s); err == nil {
		t.Fatal("expected error for invalid email")
	}
	if len(sender.messages()) != 0 {
		t.Error("invalid summary should not send")
	}
}

func TestService_NotifyNotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		sender notifier.Sender
	}{
		{"missing to", Config{From: "a@example.com"}, &mockSender{}},
		{"missing from", Config{To: "a@example.com"}, &mockSender{}},
		{"missing sender", testConfig, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.sender, tt.config)
			err := svc.Notify(context.Background(), sampleSummary())
			if !errors.Is(err, ErrNotConfigured) {
				t.Errorf("Notify() = %v, want ErrNotConfigured", err)
			}
		})
	}
}

func TestService_OperatorFailureSkipsApplicant(t *testing.T) {
	sender := &mockSender{failOn: 1}
	svc := newTestService(t, sender, testConfig)

	if err := svc.Notify(context.Background(), sampleSummary()); err == nil {
		t.Fatal("expected error")
	}
	if len(sender.messages()) != 0 {
		t.Error("applicant email should not be sent after operator failure")
	}
}

// stubNotifier returns err for every call.
type stubNotifier struct {
	err   error
	calls int
	got   *models.Summary
}

func (s *stubNotifier) Notify(ctx context.Context, summary *models.Summary) error {
	s.calls++
	s.got = summary
	return s.err
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body messageResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Message
}

func summaryBody(t *testing.T) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(raw)
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		auth       string
		serviceKey string
		notifyErr  error
		wantStatus int
		wantMsg    string
	}{
		{name: "success", method: http.MethodPost, wantStatus: http.StatusOK, wantMsg: MsgSent},
		{name: "not configured", method: http.MethodPost, notifyErr: ErrNotConfigured, wantStatus: http.StatusInternalServerError, wantMsg: MsgNotConfigured},
		{name: "send failure", method: http.MethodPost, notifyErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMsg: MsgFailed},
		{name: "malformed json", method: http.MethodPost, body: "{", wantStatus: http.StatusInternalServerError, wantMsg: MsgFailed},
		{name: "missing bearer", method: http.MethodPost, serviceKey: "k", wantStatus: http.StatusUnauthorized, wantMsg: MsgUnauthorized},
		{name: "wrong bearer", method: http.MethodPost, serviceKey: "k", auth: "Bearer x", wantStatus: http.StatusUnauthorized, wantMsg: MsgUnauthorized},
		{name: "matching bearer", method: http.MethodPost, serviceKey: "k", auth: "Bearer k", wantStatus: http.StatusOK, wantMsg: MsgSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubNotifier{err: tt.notifyErr}
			h := NewHandler(stub, tt.serviceKey)

			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/functions/notify-project", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/functions/notify-project", summaryBody(t))
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeMessage(t, rec); got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	stub := &stubNotifier{}
	h := NewHandler(stub, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/notify-project", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != MsgMethodNotAllowed {
		t.Errorf("body = %q", got)
	}
	if stub.calls != 0 {
		t.Error("notifier should not be called")
	}
}

func TestClient_Skipped(t *testing.T) {
	for _, cfg := range []ClientConfig{{}, {URL: "http://x"}, {ServiceKey: "k"}} {
		c := NewClient(cfg)
		if err := c.Notify(context.Background(), sampleSummary()); !errors.Is(err, ErrSkipped) {
			t.Errorf("Notify(%+v) = %v, want ErrSkipped", cfg, err)
		}
	}
}

func TestClient_RoundTrip(t *testing.T) {
	sender := &mockSender{}
	svc := newTestService(t, sender, testConfig)
	server := httptest.NewServer(NewHandler(svc, "secret"))
	defer server.Close()

	c := NewClient(ClientConfig{URL: server.URL, ServiceKey: "secret"})
	if err := c.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(sender.messages()) != 2 {
		t.Errorf("sent %d messages, want 2", len(sender.messages()))
	}

	bad := NewClient(ClientConfig{URL: server.URL, ServiceKey: "wrong"})
	err := bad.Notify(context.Background(), sampleSummary())
	if err == nil || !strings.Contains(err.Error(), MsgUnauthorized) {
		t.Errorf("Notify() with wrong key = %v", err)
	}
}

func TestClient_PropagatesRelayMessage(t *testing.T) {
	stub := &stubNotifier{err: ErrNotConfigured}
	server := httptest.NewServer(NewHandler(stub, ""))
	defer server.Close()

	c := NewClient(ClientConfig{URL: server.URL, ServiceKey: "k"})
	err := c.Notify(context.Background(), sampleSummary())
	if err == nil || !strings.Contains(err.Error(), MsgNotConfigured) {
		t.Errorf("Notify() = %v", err)
	}
	if stub.got == nil || stub.got.ContactName != "Mia" {
		t.Errorf("relay received %+v", stub.got)
	}
}
