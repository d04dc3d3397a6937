// Package mailer delivers finished readings by email
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/arcanaland/cardoracle/internal/config"
	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/oracle"
)

// Message is a single HTML email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a message. Transport failures are returned as
// *oracle.DeliveryError.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an SMTP relay, upgrading to TLS when the
// server offers it.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
	log      *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		log:      log,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return &oracle.DeliveryError{To: msg.To, Err: fmt.Errorf("from address: %w", err)}
	}
	if err := m.To(msg.To); err != nil {
		return &oracle.DeliveryError{To: msg.To, Err: fmt.Errorf("to address: %w", err)}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return &oracle.DeliveryError{To: msg.To, Err: err}
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.log.Warn("smtp delivery failed", "email", msg.To, "host", s.host, "error", err)
		return &oracle.DeliveryError{To: msg.To, Err: err}
	}
	s.log.Debug("smtp delivery ok", "email", msg.To, "host", s.host)
	return nil
}
