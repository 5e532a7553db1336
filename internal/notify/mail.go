// Package notify sends the sweep summary mail.
package notify

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"

	"github.com/presenced/presenced/internal/config"
)

type MailSender struct {
	dialer *gomail.Dialer
	cfg    config.MailConfig
}

// NewMailSender builds a sender from config; credentials come from
// MAIL_USER / MAIL_PASS in the environment. Returns nil when mailing is
// disabled.
func NewMailSender(cfg config.MailConfig) *MailSender {
	if !cfg.Enabled {
		return nil
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"))
	return &MailSender{dialer: d, cfg: cfg}
}

func (m *MailSender) Send(subject, body string) error {
	if len(m.cfg.To) == 0 {
		return fmt.Errorf("no mail recipients configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To...)
	if subject == "" {
		subject = m.cfg.Subject
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
