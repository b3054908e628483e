// Package client talks to the anfrage HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

// Config configures the API client.
type Config struct {
	BaseURL    string        // e.g. http://localhost:8080
	AdminToken string        // needed for ListRequests
	Timeout    time.Duration // default 15s
}

// Client is an HTTP client for the submission and admin endpoints.
type Client struct {
	baseURL    string
	adminToken string
	http       *http.Client
}

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
	Issues  *validation.Issues
}

func (e *APIError) Error() string {
	if e.Issues.Empty() {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s (%v)", e.Status, e.Message, e.Issues)
}

// Unwrap exposes the field issues to errors.As.
func (e *APIError) Unwrap() error {
	return e.Issues.Err()
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		adminToken: cfg.AdminToken,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

// SubmitFull posts a full-flow submission.
func (c *Client) SubmitFull(ctx context.Context, s *models.FullSubmission) error {
	return c.post(ctx, "/api/project-request", s)
}

// SubmitLite posts a lite-flow submission.
func (c *Client) SubmitLite(ctx context.Context, s *models.LiteSubmission) error {
	return c.post(ctx, "/api/project-request-lite", s)
}

// RecordView posts a page view.
func (c *Client) RecordView(ctx context.Context, path string) error {
	return c.post(ctx, "/api/telemetry/view", map[string]string{"path": path})
}

// RequestList is the admin list answer.
type RequestList struct {
	Requests []*models.ProjectRequest `json:"requests"`
	Error    string                   `json:"error,omitempty"`
}

// ListRequests returns up to 100 stored requests, newest first.
func (c *Client) ListRequests(ctx context.Context) (*RequestList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var list RequestList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode request list: %w", err)
	}
	return &list, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string             `json:"message"`
		Issues  *validation.Issues `json:"issues"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Issues = body.Issues
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
