package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andredale-lab/One-Coffee/internal/models"
)

// Memory is an in-memory implementation of all repositories, used in tests
// and for running the API locally without Mongo. It enforces the same
// uniqueness rule on the conversation pair as the Mongo index does.
type Memory struct {
	mu            sync.RWMutex
	profiles      map[string]models.Profile
	conversations map[string]models.Conversation
	messages      []models.Message
	invitations   map[string]models.Invitation
}

func NewMemory() *Memory {
	return &Memory{
		profiles:      make(map[string]models.Profile),
		conversations: make(map[string]models.Conversation),
		invitations:   make(map[string]models.Invitation),
	}
}

// Profiles returns a ProfileRepository view of m.
func (m *Memory) Profiles() *MemoryProfiles { return &MemoryProfiles{m} }

// Conversations returns a ConversationRepository view of m.
func (m *Memory) Conversations() *MemoryConversations { return &MemoryConversations{m} }

// Messages returns a MessageRepository view of m.
func (m *Memory) Messages() *MemoryMessages { return &MemoryMessages{m} }

// Invitations returns an InvitationRepository view of m.
func (m *Memory) Invitations() *MemoryInvitations { return &MemoryInvitations{m} }

type MemoryProfiles struct{ m *Memory }

func (r *MemoryProfiles) Get(ctx context.Context, id string) (*models.Profile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProfiles) List(ctx context.Context, excludeID string, limit int64) ([]*models.Profile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*models.Profile{}
	for id, p := range r.m.profiles {
		if id == excludeID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryProfiles) Upsert(ctx context.Context, p *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if old, ok := r.m.profiles[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	}
	r.m.profiles[p.ID] = *p
	return nil
}

type MemoryConversations struct{ m *Memory }

func (r *MemoryConversations) Get(ctx context.Context, id string) (*models.Conversation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	c, ok := r.m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryConversations) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.findByPairLocked(a, b)
}

func (r *MemoryConversations) findByPairLocked(a, b string) (*models.Conversation, error) {
	for _, c := range r.m.conversations {
		if c.ParticipantA == a && c.ParticipantB == b {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryConversations) Insert(ctx context.Context, c *models.Conversation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, err := r.findByPairLocked(c.ParticipantA, c.ParticipantB); err == nil {
		return ErrDuplicate
	}
	r.m.conversations[c.ID] = *c
	return nil
}

func (r *MemoryConversations) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*models.Conversation{}
	for _, c := range r.m.conversations {
		if c.HasParticipant(userID) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryConversations) BumpUpdatedAt(ctx context.Context, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.UpdatedAt = at
	r.m.conversations[id] = c
	return nil
}

type MemoryMessages struct{ m *Memory }

func (r *MemoryMessages) Insert(ctx context.Context, msg *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.messages = append(r.m.messages, *msg)
	return nil
}

func (r *MemoryMessages) List(ctx context.Context, conversationID string) ([]*models.Message, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*models.Message{}
	for _, msg := range r.m.messages {
		if msg.ConversationID == conversationID {
			msg := msg
			out = append(out, &msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryMessages) Last(ctx context.Context, conversationID string) (*models.Message, error) {
	all, err := r.List(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	return all[len(all)-1], nil
}

func (r *MemoryMessages) MarkRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for i := range r.m.messages {
		msg := &r.m.messages[i]
		if msg.ConversationID == conversationID && msg.SenderID != viewerID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (r *MemoryMessages) CountUnread(ctx context.Context, conversationIDs []string, viewerID string) (int64, error) {
	ids := make(map[string]bool, len(conversationIDs))
	for _, id := range conversationIDs {
		ids[id] = true
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, msg := range r.m.messages {
		if ids[msg.ConversationID] && msg.SenderID != viewerID && !msg.Read {
			n++
		}
	}
	return n, nil
}

type MemoryInvitations struct{ m *Memory }

func (r *MemoryInvitations) Get(ctx context.Context, id string) (*models.Invitation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	inv, ok := r.m.invitations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (r *MemoryInvitations) Insert(ctx context.Context, inv *models.Invitation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.invitations[inv.ID] = *inv
	return nil
}

func (r *MemoryInvitations) ListForReceiver(ctx context.Context, receiverID string) ([]*models.Invitation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*models.Invitation{}
	for _, inv := range r.m.invitations {
		if inv.ReceiverID == receiverID {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryInvitations) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	inv, ok := r.m.invitations[id]
	if !ok || inv.Status != models.InvitationPending {
		return false, nil
	}
	inv.Status = status
	r.m.invitations[id] = inv
	return true, nil
}
