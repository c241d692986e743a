// Package email handles outbound mail. Registration publishes a welcome
// event to RabbitMQ instead of sending inline; the worker-side consumer
// renders and delivers it, so a slow or dead SMTP host never blocks an API
// request.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/arekbor/helpdesk/internal/config"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewSender picks the delivery mode from configuration. Anything other than
// "smtp" logs instead of sending, which keeps dev setups relay-free.
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Mode == "smtp" {
		return &SMTPSender{host: cfg.Host, port: cfg.Port, from: cfg.From}
	}
	return &LogSender{}
}

// LogSender records the send without delivering anything.
type LogSender struct{}

func (s *LogSender) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("email send skipped (log mode)", "to", to, "subject", subject)
	return nil
}

// SMTPSender delivers over a plain SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
}

func (s *SMTPSender) Send(_ context.Context, to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.from, to, subject, htmlBody)

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
