// Package ws bridges feed subscriptions onto websocket connections.
package ws

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/feed"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

type Handler struct {
	broker *feed.Broker
	convs  repository.ConversationRepository
	log    *zap.SugaredLogger
}

func NewHandler(broker *feed.Broker, convs repository.ConversationRepository, log *zap.SugaredLogger) *Handler {
	return &Handler{broker: broker, convs: convs, log: log}
}

// Upgrade gates the route to websocket requests. JWT middleware has
// already stored the user id in Locals.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// resolveFilter decides what a connection may watch. No conversation id
// means the broad stream of the user's own conversations; a conversation
// id narrows the stream but is only granted to its participants.
func (h *Handler) resolveFilter(ctx context.Context, userID, conversationID string) (feed.Filter, error) {
	if userID == "" {
		return feed.Filter{}, fmt.Errorf("missing user: %w", apperr.ErrForbidden)
	}
	if conversationID == "" {
		return feed.Filter{UserID: userID}, nil
	}
	c, err := h.convs.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return feed.Filter{}, fmt.Errorf("conversation %s: %w", conversationID, apperr.ErrNotFound)
		}
		return feed.Filter{}, fmt.Errorf("load conversation: %w", apperr.ErrTransient)
	}
	if !c.HasParticipant(userID) {
		return feed.Filter{}, fmt.Errorf("user %s is not a participant: %w", userID, apperr.ErrForbidden)
	}
	return feed.Filter{ConversationID: conversationID}, nil
}

// wire is what goes over the socket. "resync" tells the client the stream
// lagged and it should refetch the list it is rendering.
type wire struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Message        interface{} `json:"message,omitempty"`
}

// Serve pumps feed events to one connection. `?conversation_id=` narrows
// the stream to a single chat (participants only); without it the client
// gets every event touching its own conversations, which is what the
// unread badge listens to.
func (h *Handler) Serve(conn *websocket.Conn) {
	defer conn.Close()

	userID, _ := conn.Locals("user_id").(string)
	filter, err := h.resolveFilter(context.Background(), userID, conn.Query("conversation_id"))
	if err != nil {
		if errors.Is(err, apperr.ErrTransient) {
			h.log.Errorw("resolve ws filter", "user", userID, "err", err)
		}
		return
	}

	sub := h.broker.Subscribe(filter)
	defer sub.Cancel()
	h.log.Infow("ws subscribed", "user", userID, "conversation", filter.ConversationID)

	// Reader exists only to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			out := wire{
				Type:           string(ev.Type),
				ConversationID: ev.ConversationID,
			}
			if ev.Message != nil {
				out.Message = ev.Message
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
			if sub.Lagged() {
				if err := conn.WriteJSON(wire{Type: "resync"}); err != nil {
					return
				}
			}
		case <-done:
			return
		}
	}
}
