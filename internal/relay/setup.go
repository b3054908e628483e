package relay

import (
	"fmt"

	"github.com/good-yellow-bee/anfrage/internal/notifier"
)

// EmailConfig selects and configures the email provider. Resend wins when
// both an API key and an SMTP host are set.
type EmailConfig struct {
	To             string `yaml:"to" env:"NOTIFY_EMAIL_TO"`
	From           string `yaml:"from" env:"NOTIFY_EMAIL_FROM"`
	ResendAPIKey   string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	ResendEndpoint string `yaml:"resend_endpoint" env:"RESEND_ENDPOINT"`
	SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
	SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	MaxPerMinute   int    `yaml:"max_per_minute" env:"NOTIFY_MAX_PER_MINUTE"`
}

// HasProvider reports whether an email provider is configured.
func (c EmailConfig) HasProvider() bool {
	return c.ResendAPIKey != "" || c.SMTPHost != ""
}

// NewSender builds the throttled provider sender. It returns nil, nil when
// no provider is configured.
func NewSender(c EmailConfig) (notifier.Sender, error) {
	var sender notifier.Sender
	switch {
	case c.ResendAPIKey != "":
		s, err := notifier.NewResendSender(notifier.ResendConfig{
			APIKey:   c.ResendAPIKey,
			Endpoint: c.ResendEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("create resend sender: %w", err)
		}
		sender = s
	case c.SMTPHost != "":
		port := c.SMTPPort
		if port == 0 {
			port = 587
		}
		s, err := notifier.NewEmailSender(notifier.EmailConfig{
			Host:     c.SMTPHost,
			Port:     port,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("create smtp sender: %w", err)
		}
		sender = s
	default:
		return nil, nil
	}

	throttle := notifier.DefaultRateLimitConfig()
	if c.MaxPerMinute > 0 {
		throttle.MaxPerWindow = c.MaxPerMinute
	}
	return notifier.NewThrottledSender(sender, throttle), nil
}

// NewServiceFromConfig wires the provider, the templates and the addresses
// into a Service. The returned sender may be nil and must be closed by the
// caller otherwise.
func NewServiceFromConfig(c EmailConfig) (*Service, notifier.Sender, error) {
	sender, err := NewSender(c)
	if err != nil {
		return nil, nil, err
	}
	templates, err := notifier.LoadTemplates()
	if err != nil {
		if sender != nil {
			sender.Close()
		}
		return nil, nil, fmt.Errorf("load email templates: %w", err)
	}
	return NewService(sender, templates, Config{To: c.To, From: c.From}), sender, nil
}
