// Package relay turns a submission summary into the operator and applicant
// emails. It runs as its own deployable and is called by the intake gateway
// through Client.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/notifier"
	"github.com/good-yellow-bee/anfrage/internal/validation"
)

// ErrNotConfigured is returned when the operator address or sender is missing.
var ErrNotConfigured = errors.New("notification not configured")

// Config holds the relay addresses.
type Config struct {
	To   string // operator inbox (NOTIFY_EMAIL_TO)
	From string // sender address (NOTIFY_EMAIL_FROM)
}

// Service sends the two relay emails.
type Service struct {
	sender    notifier.Sender
	templates *notifier.Templates
	config    Config
}

// NewService creates a relay service. sender may be nil when no provider is
// configured; Notify then fails with ErrNotConfigured.
func NewService(sender notifier.Sender, templates *notifier.Templates, config Config) *Service {
	return &Service{
		sender:    sender,
		templates: templates,
		config:    config,
	}
}

// Notify validates s and sends the operator summary, then the applicant
// acknowledgment. A failed operator send skips the acknowledgment.
func (s *Service) Notify(ctx context.Context, summary *models.Summary) error {
	if issues := validation.Summary(summary); !issues.Empty() {
		return fmt.Errorf("invalid summary: %w", issues)
	}
	if s.config.To == "" || s.config.From == "" || s.sender == nil {
		return ErrNotConfigured
	}

	data := notifier.SummaryToTemplateData(summary)

	html, text, err := s.templates.Operator(data)
	if err != nil {
		return fmt.Errorf("render operator email: %w", err)
	}
	err = s.send(ctx, "operator", &notifier.Message{
		From:    s.config.From,
		To:      []string{s.config.To},
		ReplyTo: summary.ContactEmail,
		Subject: notifier.OperatorSubject(summary.ContactName),
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return err
	}

	html, text, err = s.templates.Applicant(data)
	if err != nil {
		return fmt.Errorf("render applicant email: %w", err)
	}
	return s.send(ctx, "applicant", &notifier.Message{
		From:    s.config.From,
		To:      []string{summary.ContactEmail},
		Subject: notifier.ApplicantSubject,
		HTML:    html,
		Text:    text,
	})
}

func (s *Service) send(ctx context.Context, kind string, msg *notifier.Message) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "failure").Inc()
		return fmt.Errorf("send %s email via %s: %w", kind, s.sender.Name(), err)
	}
	metrics.EmailsSentTotal.WithLabelValues(kind, "success").Inc()
	log.Printf("relay: %s email sent via %s", kind, s.sender.Name())
	return nil
}
