// SMTP 메일 발송 클라이언트
//
// 환경변수:
//   - SMTP_HOST
//   - SMTP_PORT (default: 587)
//   - SMTP_USERNAME
//   - SMTP_PASSWORD
//   - SMTP_FROM

package client

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/camshop/backend/internal/config"
)

// SMTPMailer delivers HTML mail over plain SMTP. Delivery is fire-and-forget
// from the caller's perspective: no retries, no bounce handling, a failure
// surfaces as a single error.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (m *SMTPMailer) IsConfigured() bool {
	return m.host != "" && m.from != ""
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("smtp mailer is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, subject, html)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
