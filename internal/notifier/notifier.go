// Package notifier sends the transactional emails of the notification relay.
package notifier

import (
	"context"
	"fmt"
	"strings"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string // optional
	Subject string
	HTML    string
	Text    string
}

// Validate checks the fields every provider needs.
func (m *Message) Validate() error {
	if m.From == "" {
		return fmt.Errorf("from address is required")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if m.HTML == "" && m.Text == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// Sender is the interface for all email providers.
type Sender interface {
	// Name returns the provider name (e.g., "resend", "smtp").
	Name() string
	// Send delivers one message.
	Send(ctx context.Context, msg *Message) error
	// Close releases any resources.
	Close() error
}
