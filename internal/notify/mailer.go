package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/it-tracker/internal/config"
)

// EmailTransport delivers a rendered notification by mail. Delivery is
// best-effort; callers log failures and move on.
type EmailTransport interface {
	Send(to, subject, htmlBody, textBody string) error
}

// NewEmailTransport returns the SMTP transport when credentials are
// configured, otherwise a silent no-op.
func NewEmailTransport(cfg config.SMTPConfig, logger *zap.Logger) EmailTransport {
	if !cfg.Enabled() {
		logger.Info("smtp credentials not configured; email delivery disabled")
		return noopTransport{}
	}
	return &smtpTransport{cfg: cfg}
}

type noopTransport struct{}

func (noopTransport) Send(to, subject, htmlBody, textBody string) error {
	return nil
}

type smtpTransport struct {
	cfg config.SMTPConfig
}

const mimeBoundary = "=_notification_alt"

func (t *smtpTransport) Send(to, subject, htmlBody, textBody string) error {
	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	msg := buildMessage(t.cfg.From, to, subject, htmlBody, textBody)
	if err := smtp.SendMail(t.cfg.Addr(), auth, t.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody, textBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
