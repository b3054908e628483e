package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/good-yellow-bee/anfrage/internal/models"
)

// ErrSkipped is returned by Client.Notify when the relay URL or key is unset.
var ErrSkipped = errors.New("notification relay not configured")

// ClientConfig configures the gateway-side relay client.
type ClientConfig struct {
	URL        string        // NOTIFY_FUNCTION_URL
	ServiceKey string        // NOTIFY_SERVICE_KEY
	Timeout    time.Duration // per call, default 10s
}

// Client posts summaries to a relay.
type Client struct {
	url        string
	serviceKey string
	http       *http.Client
}

// NewClient creates a relay client.
func NewClient(config ClientConfig) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		url:        config.URL,
		serviceKey: config.ServiceKey,
		http:       &http.Client{Timeout: config.Timeout},
	}
}

// Configured reports whether both URL and key are set.
func (c *Client) Configured() bool {
	return c.url != "" && c.serviceKey != ""
}

// Notify posts summary to the relay and waits for its answer.
func (c *Client) Notify(ctx context.Context, summary *models.Summary) error {
	if !c.Configured() {
		return ErrSkipped
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg messageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			return fmt.Errorf("relay returned %d: %s", resp.StatusCode, msg.Message)
		}
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return nil
}
