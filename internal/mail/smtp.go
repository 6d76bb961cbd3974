package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"docnotify/internal/config"
)

// smtpTransport implements Transport over SMTP using gomail.
// Each Send dials a fresh connection; gomail keeps no pool, which is fine
// for the low message volume of a daily expiration cycle.
type smtpTransport struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP-backed Transport from config.
func NewSMTP(cfg config.SMTPConfig) (Transport, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &smtpTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Send dials the SMTP server and delivers one message. gomail's DialAndSend
// has no context support, so it runs in a goroutine and the context deadline
// acts as a watchdog; an abandoned dial finishes (or times out at TCP level)
// in the background.
func (t *smtpTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}
