package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/good-yellow-bee/anfrage/internal/client"
	"github.com/good-yellow-bee/anfrage/internal/models"
)

func sampleList() *client.RequestList {
	return &client.RequestList{Requests: []*models.ProjectRequest{{
		ID:           "r1",
		CreatedAt:    time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC),
		Flow:         models.FlowLite,
		ContactName:  "Mia Berger",
		ContactEmail: "mia@example.com",
		ProjectType:  "Website",
		BudgetRange:  "Nicht angegeben",
	}}}
}

func TestPrintRequests(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"table", []string{"CREATED", "Mia Berger", "Total: 1 request(s)"}},
		{"plain", []string{"2026-04-10T12:00:00Z\tlite\tMia Berger\tmia@example.com\tWebsite"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printRequests(&buf, sampleList(), tt.format); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestPrintRequests_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printRequests(&buf, sampleList(), "json"); err != nil {
		t.Fatal(err)
	}
	var got client.RequestList
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got.Requests) != 1 || got.Requests[0].ContactName != "Mia Berger" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestPrintRequests_EmptyAndError(t *testing.T) {
	var buf bytes.Buffer
	printRequests(&buf, &client.RequestList{}, "table")
	if !strings.Contains(buf.String(), "Noch keine Anfragen vorhanden.") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printRequests(&buf, &client.RequestList{Error: "db down"}, "table")
	if !strings.Contains(buf.String(), "Fehler beim Laden: db down") {
		t.Errorf("error output = %q", buf.String())
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("geheim123")
	if err != nil {
		t.Fatal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("geheim123")); err != nil {
		t.Errorf("hash does not match: %v", err)
	}
	if _, err := hashPassword("  "); err == nil {
		t.Error("expected error for blank password")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Müllerstraße", 6); got != "Mülle…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("kurz", 10); got != "kurz" {
		t.Errorf("truncate = %q", got)
	}
}
