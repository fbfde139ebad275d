package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/cache"
	"github.com/andredale-lab/One-Coffee/internal/events"
	"github.com/andredale-lab/One-Coffee/internal/feed"
	"github.com/andredale-lab/One-Coffee/internal/metrics"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

// Publisher is the notification trigger point: one event per appended
// message. Implemented by the Kafka producer.
type Publisher interface {
	PublishMessageCreated(ctx context.Context, ev events.MessageCreated) error
}

// MessageService is the ledger, the read-state tracker and the feed's
// publish side. Everything after the insert (updated_at bump, feed, cache
// invalidation, notification event) is log-only: a sent message is never
// reported lost because a side effect failed.
type MessageService struct {
	convs  repository.ConversationRepository
	msgs   repository.MessageRepository
	broker *feed.Broker
	unread *cache.UnreadCache
	pub    Publisher
	log    *zap.SugaredLogger
}

func NewMessageService(
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	broker *feed.Broker,
	unread *cache.UnreadCache,
	pub Publisher,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{convs: convs, msgs: msgs, broker: broker, unread: unread, pub: pub, log: log}
}

func (s *MessageService) conversationFor(ctx context.Context, conversationID, actorID string) (*models.Conversation, error) {
	c, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load conversation: %w", apperr.ErrTransient)
	}
	if !c.HasParticipant(actorID) {
		return nil, fmt.Errorf("user %s is not a participant: %w", actorID, apperr.ErrForbidden)
	}
	return c, nil
}

// Append adds a message to the conversation's ledger. The id is a v7 UUID,
// so ids of messages sharing a timestamp still sort in insertion order.
func (s *MessageService) Append(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty content: %w", apperr.ErrInvalidArgument)
	}
	c, err := s.conversationFor(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &models.Message{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
		Read:           false,
	}
	if err := s.msgs.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("append message: %w", apperr.ErrTransient)
	}
	metrics.MessagesSent.Inc()

	if err := s.convs.BumpUpdatedAt(ctx, c.ID, now); err != nil {
		s.log.Errorw("bump conversation updated_at", "conversation", c.ID, "err", err)
	}

	recipient := c.Other(senderID)
	s.broker.Publish(feed.Event{
		Type:           feed.MessageInserted,
		ConversationID: c.ID,
		Participants:   []string{c.ParticipantA, c.ParticipantB},
		Message:        m,
	})
	if err := s.unread.Invalidate(ctx, recipient); err != nil {
		s.log.Warnw("invalidate unread cache", "user", recipient, "err", err)
	}
	if s.pub != nil {
		ev := events.MessageCreated{
			MessageID:      m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			RecipientID:    recipient,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		}
		if err := s.pub.PublishMessageCreated(ctx, ev); err != nil {
			s.log.Errorw("publish message.created", "message", m.ID, "err", err)
		}
	}
	return m, nil
}

// List returns the conversation's whole history in send order.
func (s *MessageService) List(ctx context.Context, conversationID, viewerID string) ([]*models.Message, error) {
	if _, err := s.conversationFor(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.msgs.List(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", apperr.ErrTransient)
	}
	return msgs, nil
}

// MarkRead flips every unread message the viewer received in the
// conversation. Calling it with nothing to flip is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, viewerID string) error {
	c, err := s.conversationFor(ctx, conversationID, viewerID)
	if err != nil {
		return err
	}
	n, err := s.msgs.MarkRead(ctx, conversationID, viewerID)
	if err != nil {
		return fmt.Errorf("mark read: %w", apperr.ErrTransient)
	}
	if n == 0 {
		return nil
	}
	metrics.ReadMarks.Add(float64(n))
	s.broker.Publish(feed.Event{
		Type:           feed.MessageUpdated,
		ConversationID: c.ID,
		Participants:   []string{c.ParticipantA, c.ParticipantB},
	})
	if err := s.unread.Invalidate(ctx, viewerID); err != nil {
		s.log.Warnw("invalidate unread cache", "user", viewerID, "err", err)
	}
	return nil
}

// UnreadCount sums unread messages addressed to the viewer across all
// their conversations. The Redis copy is a short-lived accelerator; any
// cache trouble falls through to a recompute.
func (s *MessageService) UnreadCount(ctx context.Context, viewerID string) (int64, error) {
	if n, ok, err := s.unread.Get(ctx, viewerID); err == nil && ok {
		return n, nil
	} else if err != nil {
		s.log.Warnw("read unread cache", "user", viewerID, "err", err)
	}

	convs, err := s.convs.ListForUser(ctx, viewerID)
	if err != nil {
		return 0, fmt.Errorf("list conversations: %w", apperr.ErrTransient)
	}
	if len(convs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}
	n, err := s.msgs.CountUnread(ctx, ids, viewerID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", apperr.ErrTransient)
	}
	if err := s.unread.Set(ctx, viewerID, n); err != nil {
		s.log.Warnw("write unread cache", "user", viewerID, "err", err)
	}
	return n, nil
}
