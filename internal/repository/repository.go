package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andredale-lab/One-Coffee/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	// List returns profiles excluding excludeID, newest first.
	List(ctx context.Context, excludeID string, limit int64) ([]*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

type ConversationRepository interface {
	Get(ctx context.Context, id string) (*models.Conversation, error)
	// FindByPair expects a, b in canonical order.
	FindByPair(ctx context.Context, a, b string) (*models.Conversation, error)
	// Insert returns ErrDuplicate when a conversation for the pair exists.
	Insert(ctx context.Context, c *models.Conversation) error
	// ListForUser returns the user's conversations, most recent activity first.
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	BumpUpdatedAt(ctx context.Context, id string, at time.Time) error
}

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// List returns the whole history in (created_at, id) ascending order.
	List(ctx context.Context, conversationID string) ([]*models.Message, error)
	// Last returns ErrNotFound for an empty conversation.
	Last(ctx context.Context, conversationID string) (*models.Message, error)
	// MarkRead flips read on unread messages not sent by viewerID and
	// returns how many it flipped.
	MarkRead(ctx context.Context, conversationID, viewerID string) (int64, error)
	CountUnread(ctx context.Context, conversationIDs []string, viewerID string) (int64, error)
}

type InvitationRepository interface {
	Get(ctx context.Context, id string) (*models.Invitation, error)
	Insert(ctx context.Context, inv *models.Invitation) error
	ListForReceiver(ctx context.Context, receiverID string) ([]*models.Invitation, error)
	// UpdateStatus transitions id from pending to status; reports whether
	// a document was modified.
	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) (bool, error)
}
