package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds the HTTP mail relay configuration.
type Config struct {
	Endpoint   string        `mapstructure:"endpoint"`
	ServiceID  string        `mapstructure:"service_id"`
	TemplateID string        `mapstructure:"template_id"`
	PublicKey  string        `mapstructure:"public_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RelaySender delivers mail through an HTTP template relay. Each call posts
// one message; the relay owns SMTP and rendering of the outer template.
type RelaySender struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewRelaySender creates a relay sender.
func NewRelaySender(cfg Config, logger *zap.Logger) *RelaySender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RelaySender{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type relayRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts a single message to the relay. A non-2xx response is an error.
func (s *RelaySender) Send(ctx context.Context, recipient, subject, body string) error {
	payload := relayRequest{
		ServiceID:  s.cfg.ServiceID,
		TemplateID: s.cfg.TemplateID,
		UserID:     s.cfg.PublicKey,
		TemplateParams: map[string]string{
			"to_email": recipient,
			"subject":  subject,
			"message":  body,
		},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Mail relay request failed",
			zap.String("recipient", recipient),
			zap.Error(err))
		return fmt.Errorf("mail relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("Mail relay rejected message",
			zap.String("recipient", recipient),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("detail", detail))
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}

	s.logger.Info("Mail delivered",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}

// LogSender logs messages instead of delivering them. Used when no relay
// endpoint is configured, typically in local development.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	s.logger.Info("Mail suppressed (no relay configured)",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}
