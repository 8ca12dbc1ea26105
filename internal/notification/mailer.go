package notification

import (
	"github.com/atelier-works/atelier-engine/internal/shared/config"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Mailer hands a rendered message to the outbound mail transport.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates an SMTP-backed mailer from config.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// LogMailer only logs, used locally when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Info("LogMailer: would send email",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
