package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"studiosite/internal/models"
)

func testMessage() *models.Message {
	return &models.Message{
		Name:    "Ana",
		Email:   "ana@example.com",
		Subject: "Logo\r\nBcc: victim@example.com",
		Message: "Hello\nthere",
	}
}

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New(Config{}).(Log); !ok {
		t.Error("expected Log notifier without SMTP host")
	}
	n, ok := New(Config{Host: "smtp.example.com", To: "studio@example.com", Username: "bot@example.com"}).(*SMTP)
	if !ok {
		t.Fatal("expected SMTP notifier")
	}
	if n.cfg.Port != 587 || n.cfg.From != "bot@example.com" {
		t.Errorf("defaults not applied: %+v", n.cfg)
	}
}

func TestComposeSanitizesHeaders(t *testing.T) {
	msg := string(compose("bot@example.com", "studio@example.com", testMessage(), time.Unix(0, 0)))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatalf("no header/body separator in %q", msg)
	}
	if strings.Contains(head, "\r\nBcc:") {
		t.Errorf("header injection in %q", head)
	}
	if !strings.Contains(head, "Reply-To: ana@example.com") {
		t.Errorf("missing Reply-To in %q", head)
	}
	if !strings.Contains(body, "Hello\r\nthere") {
		t.Errorf("body line endings not normalized: %q", body)
	}
}

func TestSMTPNotify(t *testing.T) {
	var gotAddr string
	var gotTo []string
	n := &SMTP{
		cfg: Config{Host: "smtp.example.com", Port: 2525, From: "bot@example.com", To: "studio@example.com"},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo = addr, to
			return nil
		},
	}
	if err := n.NotifyContact(context.Background(), testMessage()); err != nil {
		t.Fatalf("NotifyContact: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || len(gotTo) != 1 || gotTo[0] != "studio@example.com" {
		t.Errorf("sent to %s %v", gotAddr, gotTo)
	}

	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	if err := n.NotifyContact(context.Background(), testMessage()); err == nil {
		t.Error("expected send error")
	}
}

func TestSMTPNotifyHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	n := &SMTP{
		cfg: Config{Host: "smtp.example.com", Port: 25, To: "studio@example.com"},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			<-block
			return nil
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := n.NotifyContact(ctx, testMessage()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}
