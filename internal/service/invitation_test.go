package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/models"
)

func TestInvitationLifecycle(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	inv, err := e.invs.Send(ctx, "anna", "luca", "Un caffè giovedì?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if inv.Status != models.InvitationPending {
		t.Fatalf("new invitation status: %s", inv.Status)
	}

	inbox, err := e.invs.ListForReceiver(ctx, "luca")
	if err != nil {
		t.Fatalf("ListForReceiver: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != inv.ID {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
	if inbox[0].Sender == nil || inbox[0].Sender.FullName != "Anna Rossi" {
		t.Fatalf("sender profile not attached: %+v", inbox[0].Sender)
	}

	updated, err := e.invs.Respond(ctx, inv.ID, "luca", models.InvitationAccepted)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if updated.Status != models.InvitationAccepted {
		t.Fatalf("status after accept: %s", updated.Status)
	}

	// Transitions are one-shot.
	if _, err := e.invs.Respond(ctx, inv.ID, "luca", models.InvitationRejected); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("second respond: want ErrInvalidArgument, got %v", err)
	}
}

func TestInvitationRespondAuthorization(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	inv, err := e.invs.Send(ctx, "anna", "luca", "Caffè?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := e.invs.Respond(ctx, inv.ID, "anna", models.InvitationAccepted); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("sender responding: want ErrForbidden, got %v", err)
	}
	if _, err := e.invs.Respond(ctx, inv.ID, "luca", "maybe"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("bogus status: want ErrInvalidArgument, got %v", err)
	}
	if _, err := e.invs.Respond(ctx, "missing", "luca", models.InvitationAccepted); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown invitation: want ErrNotFound, got %v", err)
	}
}

func TestInvitationSendValidation(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	ctx := context.Background()

	if _, err := e.invs.Send(ctx, "anna", "anna", "ciao"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("self invite: want ErrInvalidArgument, got %v", err)
	}
	if _, err := e.invs.Send(ctx, "anna", "ghost", "ciao"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown receiver: want ErrNotFound, got %v", err)
	}
	if _, err := e.invs.Send(ctx, "anna", "luca", "   "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("blank message: want ErrInvalidArgument, got %v", err)
	}
}
