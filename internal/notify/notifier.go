// Package notify consumes message.created events and emails the
// recipient. Email delivery is strictly best-effort: any failure here is
// logged and never reaches the sender's request.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/events"
	"github.com/andredale-lab/One-Coffee/internal/metrics"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

// EmailSender is the slice of a mail provider the notifier needs.
// *EmailClient satisfies it.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, html string) error
	IsConfigured() bool
}

type Notifier struct {
	reader   *kafka.Reader
	profiles repository.ProfileRepository
	email    EmailSender
	siteURL  string
	log      *zap.SugaredLogger
}

func NewNotifier(
	brokers []string,
	topic, group string,
	profiles repository.ProfileRepository,
	email EmailSender,
	siteURL string,
	log *zap.SugaredLogger,
) *Notifier {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Notifier{reader: r, profiles: profiles, email: email, siteURL: siteURL, log: log}
}

// Run consumes until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		m, err := n.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.log.Errorw("kafka read", "err", err)
			time.Sleep(time.Second)
			continue
		}
		var ev events.MessageCreated
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			n.log.Errorw("decode message.created", "err", err)
			continue
		}
		if err := n.notify(ctx, ev); err != nil {
			n.log.Errorw("notify recipient", "message", ev.MessageID, "err", err)
		}
	}
}

func (n *Notifier) notify(ctx context.Context, ev events.MessageCreated) error {
	if !n.email.IsConfigured() {
		return nil
	}
	recipient, err := n.profiles.Get(ctx, ev.RecipientID)
	if err != nil {
		return fmt.Errorf("recipient profile: %w", err)
	}
	if recipient.Email == "" {
		return nil
	}
	senderName := "Un utente"
	if sender, err := n.profiles.Get(ctx, ev.SenderID); err == nil && sender.FullName != "" {
		senderName = sender.FullName
	}

	chatURL := fmt.Sprintf("%s/chat/%s", n.siteURL, ev.ConversationID)
	subject := fmt.Sprintf("💬 %s ti ha scritto su One Coffee", senderName)
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; background:#f9f9f9; padding:24px;">
  <h1 style="margin:0 0 8px 0;">☕ One Coffee</h1>
  <p style="margin:0 0 24px 0; color:#555;">Hai ricevuto un nuovo messaggio</p>
  <div style="background:#ffffff; padding:16px; border-radius:8px; border:1px solid #e5e5e5;">
    <p style="margin:0 0 8px 0; font-size:14px; color:#555;"><strong>%s</strong> ti ha scritto:</p>
    <p style="margin:0; font-size:16px;">%s</p>
  </div>
  <a href="%s" style="display:inline-block; margin-top:24px; padding:12px 18px; background:#000; color:#fff; text-decoration:none; border-radius:8px; font-weight:bold;">Apri la chat</a>
</div>`,
		html.EscapeString(senderName), html.EscapeString(ev.Content), chatURL)

	if err := n.email.Send(ctx, recipient.Email, subject, body); err != nil {
		return err
	}
	metrics.EmailsSent.Inc()
	n.log.Infow("notification email sent", "recipient", ev.RecipientID, "message", ev.MessageID)
	return nil
}

func (n *Notifier) Close() error { return n.reader.Close() }
