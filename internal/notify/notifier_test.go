package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/events"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

type sentMail struct {
	to      string
	subject string
	html    string
}

type stubSender struct {
	configured bool
	sent       []sentMail
	err        error
}

func (s *stubSender) Send(_ context.Context, to, subject, html string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func (s *stubSender) IsConfigured() bool { return s.configured }

func newTestNotifier(t *testing.T, sender *stubSender) (*Notifier, *repository.Memory) {
	t.Helper()
	mem := repository.NewMemory()
	n := &Notifier{
		profiles: mem.Profiles(),
		email:    sender,
		siteURL:  "https://onecoffee.example",
		log:      zap.NewNop().Sugar(),
	}
	return n, mem
}

func addProfile(t *testing.T, mem *repository.Memory, id, email, name string) {
	t.Helper()
	now := time.Now().UTC()
	err := mem.Profiles().Upsert(context.Background(), &models.Profile{
		ID: id, Email: email, FullName: name, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

func testEvent() events.MessageCreated {
	return events.MessageCreated{
		MessageID:      "msg-1",
		ConversationID: "conv-1",
		SenderID:       "anna",
		RecipientID:    "luca",
		Content:        "Ciao, caffè venerdì?",
		CreatedAt:      time.Now().UTC(),
	}
}

func TestNotifyEmailsRecipient(t *testing.T) {
	sender := &stubSender{configured: true}
	n, mem := newTestNotifier(t, sender)
	addProfile(t, mem, "anna", "anna@example.com", "Anna Rossi")
	addProfile(t, mem, "luca", "luca@example.com", "Luca Bianchi")

	if err := n.notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("want 1 email, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.to != "luca@example.com" {
		t.Fatalf("recipient: want luca@example.com, got %s", mail.to)
	}
	if !strings.Contains(mail.subject, "Anna Rossi") {
		t.Fatalf("subject should carry the sender's name, got %q", mail.subject)
	}
	if !strings.Contains(mail.html, "https://onecoffee.example/chat/conv-1") {
		t.Fatalf("body should link back to the chat, got %q", mail.html)
	}
	if !strings.Contains(mail.html, "caffè venerdì") {
		t.Fatalf("body should quote the message, got %q", mail.html)
	}
}

func TestNotifyFallsBackToGenericSenderName(t *testing.T) {
	sender := &stubSender{configured: true}
	n, mem := newTestNotifier(t, sender)
	addProfile(t, mem, "luca", "luca@example.com", "Luca Bianchi")
	// Sender "anna" has no profile.

	if err := n.notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("want 1 email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].subject, "Un utente") {
		t.Fatalf("subject should fall back to the generic name, got %q", sender.sent[0].subject)
	}
}

func TestNotifyUnconfiguredIsNoop(t *testing.T) {
	sender := &stubSender{configured: false}
	n, mem := newTestNotifier(t, sender)
	addProfile(t, mem, "luca", "luca@example.com", "Luca Bianchi")

	if err := n.notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("unconfigured sender should not be invoked, got %d emails", len(sender.sent))
	}
}

func TestNotifyMissingRecipientProfile(t *testing.T) {
	sender := &stubSender{configured: true}
	n, _ := newTestNotifier(t, sender)

	if err := n.notify(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error for unknown recipient")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no email should go out, got %d", len(sender.sent))
	}
}

func TestNotifySkipsRecipientWithoutEmail(t *testing.T) {
	sender := &stubSender{configured: true}
	n, mem := newTestNotifier(t, sender)
	addProfile(t, mem, "luca", "", "Luca Bianchi")

	if err := n.notify(context.Background(), testEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("recipient without an address should be skipped, got %d emails", len(sender.sent))
	}
}
