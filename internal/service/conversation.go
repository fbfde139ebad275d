package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

// Shown in the chat list for a conversation that has no messages yet.
const emptyPreview = "Nessun messaggio"

// ConversationService is the conversation directory plus the per-user
// chat-list projection.
type ConversationService struct {
	profiles repository.ProfileRepository
	convs    repository.ConversationRepository
	msgs     repository.MessageRepository
	log      *zap.SugaredLogger
}

func NewConversationService(
	profiles repository.ProfileRepository,
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	log *zap.SugaredLogger,
) *ConversationService {
	return &ConversationService{profiles: profiles, convs: convs, msgs: msgs, log: log}
}

// ResolveOrCreate returns the one conversation between the two users,
// creating it on first contact. The pair is stored in canonical order
// under a unique index, so two racing callers converge on the same row:
// the loser's insert fails with a duplicate and falls back to the lookup.
func (s *ConversationService) ResolveOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if userA == userB {
		return nil, fmt.Errorf("conversation with self: %w", apperr.ErrInvalidArgument)
	}
	for _, id := range []string{userA, userB} {
		if _, err := s.profiles.Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("load user %s: %w", id, apperr.ErrTransient)
		}
	}

	a, b := models.CanonicalPair(userA, userB)
	if c, err := s.convs.FindByPair(ctx, a, b); err == nil {
		return c, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find conversation: %w", apperr.ErrTransient)
	}

	now := time.Now().UTC()
	c := &models.Conversation{
		ID:           uuid.NewString(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.convs.Insert(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, ferr := s.convs.FindByPair(ctx, a, b)
		if ferr != nil {
			return nil, fmt.Errorf("find after duplicate: %w", apperr.ErrTransient)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", apperr.ErrTransient)
	}
	return c, nil
}

// Summary is one row of the chat list: the conversation, who the other
// person is, the last message preview and the viewer's unread count.
type Summary struct {
	Conversation *models.Conversation `json:"conversation"`
	Counterpart  *models.Profile      `json:"counterpart,omitempty"`
	LastMessage  string               `json:"last_message"`
	Unread       int64                `json:"unread"`
}

// ListForUser recomputes the chat-list projection from the directory and
// the ledger, ordered by most recent activity.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]*Summary, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", apperr.ErrTransient)
	}
	out := make([]*Summary, 0, len(convs))
	for _, c := range convs {
		sum := &Summary{Conversation: c, LastMessage: emptyPreview}

		other := c.Other(userID)
		counterpart, err := s.profiles.Get(ctx, other)
		if err != nil {
			// A missing profile must not hide the conversation.
			s.log.Warnw("counterpart profile missing", "conversation", c.ID, "user", other, "err", err)
		} else {
			sum.Counterpart = counterpart
		}

		last, err := s.msgs.Last(ctx, c.ID)
		switch {
		case err == nil:
			sum.LastMessage = last.Content
		case errors.Is(err, repository.ErrNotFound):
			// keep placeholder
		default:
			return nil, fmt.Errorf("last message: %w", apperr.ErrTransient)
		}

		unread, err := s.msgs.CountUnread(ctx, []string{c.ID}, userID)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", apperr.ErrTransient)
		}
		sum.Unread = unread

		out = append(out, sum)
	}
	return out, nil
}
