// Package mailer sends the notification email for new contact messages.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"studiosite/internal/models"
)

// Notifier delivers contact-form notifications.
type Notifier interface {
	NotifyContact(ctx context.Context, m *models.Message) error
}

// Config holds SMTP settings. An empty Host selects the log notifier.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// New returns an SMTP notifier, or a Log notifier when SMTP is not configured.
func New(cfg Config) Notifier {
	if cfg.Host == "" || cfg.To == "" {
		return Log{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

// Log writes notifications to the structured log instead of sending them.
type Log struct{}

func (Log) NotifyContact(_ context.Context, m *models.Message) error {
	slog.Info("contact message received", "id", m.ID, "from", m.Email, "subject", m.Subject)
	return nil
}

// SMTP sends notifications through an SMTP relay with STARTTLS and PLAIN auth.
type SMTP struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NotifyContact emails the message to the configured recipient. The send
// is abandoned when ctx is done; net/smtp has no context support, so the
// dial itself finishes in the background.
func (s *SMTP) NotifyContact(ctx context.Context, m *models.Message) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := compose(s.cfg.From, s.cfg.To, m, time.Now())

	done := make(chan error, 1)
	go func() { done <- s.send(addr, auth, s.cfg.From, []string{s.cfg.To}, msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send contact notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send contact notification: %w", ctx.Err())
	}
}

// compose builds an RFC 5322 plain-text message. Reply-To points at the
// visitor so the studio can answer directly.
func compose(from, to string, m *models.Message, now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", from)
	header("To", to)
	header("Reply-To", sanitize(m.Email))
	header("Subject", mime.QEncoding.Encode("utf-8", "New contact message: "+sanitize(m.Subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Name: %s\r\n", m.Name)
	fmt.Fprintf(&b, "Email: %s\r\n", m.Email)
	if m.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\r\n", m.Phone)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", m.Subject)
	b.WriteString(strings.ReplaceAll(m.Message, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// sanitize strips CR and LF so visitor input cannot inject headers.
func sanitize(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
