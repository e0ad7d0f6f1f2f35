package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// BaseURL is the public URL of the frontend that handles the emailed
	// links, e.g. https://contacts.example.com.
	BaseURL string
}

// SMTPMailer sends mail through a plain SMTP relay using AUTH PLAIN when
// credentials are configured.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendVerification(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(
		"Welcome!\r\n\r\nConfirm your email address by opening the link below:\r\n\r\n%s\r\n\r\nThe link expires in 24 hours.\r\n",
		link,
	)
	return m.send(to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)
	body := fmt.Sprintf(
		"A password reset was requested for your account.\r\n\r\nOpen the link below to choose a new password:\r\n\r\n%s\r\n\r\nThe link expires in 1 hour. If you did not request this, ignore this email.\r\n",
		link,
	)
	return m.send(to, "Reset your password", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
