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
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
)

// InvitationService handles the one-shot coffee invites. Invitations and
// conversations are separate channels on purpose: accepting an invite does
// not open a chat.
type InvitationService struct {
	profiles repository.ProfileRepository
	invs     repository.InvitationRepository
	log      *zap.SugaredLogger
}

func NewInvitationService(
	profiles repository.ProfileRepository,
	invs repository.InvitationRepository,
	log *zap.SugaredLogger,
) *InvitationService {
	return &InvitationService{profiles: profiles, invs: invs, log: log}
}

func (s *InvitationService) Send(ctx context.Context, senderID, receiverID, message string) (*models.Invitation, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("empty invitation message: %w", apperr.ErrInvalidArgument)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("invitation to self: %w", apperr.ErrInvalidArgument)
	}
	if _, err := s.profiles.Get(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("receiver %s: %w", receiverID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load receiver: %w", apperr.ErrTransient)
	}

	inv := &models.Invitation{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     models.InvitationPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.invs.Insert(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", apperr.ErrTransient)
	}
	return inv, nil
}

// ListForReceiver returns the user's inbox, newest first, with sender
// profiles attached for display.
func (s *InvitationService) ListForReceiver(ctx context.Context, receiverID string) ([]*models.Invitation, error) {
	invs, err := s.invs.ListForReceiver(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", apperr.ErrTransient)
	}
	for _, inv := range invs {
		sender, err := s.profiles.Get(ctx, inv.SenderID)
		if err != nil {
			s.log.Warnw("invitation sender profile missing", "invitation", inv.ID, "sender", inv.SenderID, "err", err)
			continue
		}
		inv.Sender = sender
	}
	return invs, nil
}

// Respond accepts or rejects a pending invitation. Only the receiver may
// respond, and only once.
func (s *InvitationService) Respond(ctx context.Context, invitationID, actorID string, status models.InvitationStatus) (*models.Invitation, error) {
	if status != models.InvitationAccepted && status != models.InvitationRejected {
		return nil, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidArgument)
	}
	inv, err := s.invs.Get(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invitation %s: %w", invitationID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load invitation: %w", apperr.ErrTransient)
	}
	if inv.ReceiverID != actorID {
		return nil, fmt.Errorf("only the receiver can respond: %w", apperr.ErrForbidden)
	}
	if inv.Status != models.InvitationPending {
		return nil, fmt.Errorf("invitation already %s: %w", inv.Status, apperr.ErrInvalidArgument)
	}
	modified, err := s.invs.UpdateStatus(ctx, invitationID, status)
	if err != nil {
		return nil, fmt.Errorf("update invitation: %w", apperr.ErrTransient)
	}
	if !modified {
		// Lost a race with another response.
		return nil, fmt.Errorf("invitation no longer pending: %w", apperr.ErrInvalidArgument)
	}
	inv.Status = status
	return inv, nil
}
