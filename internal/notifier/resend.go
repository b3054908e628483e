package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultResendEndpoint is the Resend email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendConfig configures the Resend HTTP API sender.
type ResendConfig struct {
	APIKey   string
	Endpoint string // defaults to DefaultResendEndpoint
	Timeout  time.Duration
}

// ResendSender delivers messages through the Resend API.
type ResendSender struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// NewResendSender creates a sender. The API key is required.
func NewResendSender(config ResendConfig) (*ResendSender, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY fehlt")
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultResendEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &ResendSender{
		apiKey:   config.APIKey,
		endpoint: config.Endpoint,
		client:   &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns "resend".
func (r *ResendSender) Name() string {
	return "resend"
}

// Send posts msg to the API.
func (r *ResendSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send via resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend fehlgeschlagen: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// Close releases idle connections.
func (r *ResendSender) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
