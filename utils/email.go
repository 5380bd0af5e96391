package utils

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text mail.
type Mailer interface {
	Send(subject, body string) error
}

type SMTPMailer struct {
	From   string
	To     string
	dialer *gomail.Dialer
}

// NewSMTPMailer returns nil when host, sender or recipient is missing; callers
// treat a nil Mailer as "mail disabled".
func NewSMTPMailer(host string, port int, user, password, from, to string) *SMTPMailer {
	if host == "" || from == "" || to == "" {
		return nil
	}
	return &SMTPMailer{
		From:   from,
		To:     to,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (m *SMTPMailer) Send(subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
