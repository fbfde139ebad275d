package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andredale-lab/One-Coffee/internal/apperr"
	"github.com/andredale-lab/One-Coffee/internal/feed"
)

func TestAppendThenList(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	conv, err := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	sent := []string{"Ciao, caffè venerdì?", "Alle 10?", "Perfetto"}
	senders := []string{"anna", "luca", "anna"}
	for i, content := range sent {
		m, err := e.msgs.Append(ctx, conv.ID, senders[i], content)
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		if m.ID == "" || m.CreatedAt.IsZero() {
			t.Fatalf("message %d missing assigned id or timestamp: %+v", i, m)
		}
		if m.Read {
			t.Fatalf("new message must be unread")
		}

		list, err := e.msgs.List(ctx, conv.ID, "anna")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != i+1 {
			t.Fatalf("after %d appends got %d messages", i+1, len(list))
		}
		if list[len(list)-1].ID != m.ID {
			t.Fatalf("appended message is not last in the list")
		}
	}

	list, err := e.msgs.List(ctx, conv.ID, "luca")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.Before(list[i-1].CreatedAt) {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	// Reads are idempotent: a second fetch returns the same sequence.
	again, err := e.msgs.List(ctx, conv.ID, "luca")
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if len(again) != len(list) {
		t.Fatalf("repeated List changed length: %d vs %d", len(again), len(list))
	}
	for i := range list {
		if again[i].ID != list[i].ID {
			t.Fatalf("repeated List changed order at %d", i)
		}
	}
}

func TestAppendValidation(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	e.addProfile("marco", "Marco Verdi")
	ctx := context.Background()

	conv, err := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	if _, err := e.msgs.Append(ctx, conv.ID, "anna", "   \n\t "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("blank content: want ErrInvalidArgument, got %v", err)
	}
	if _, err := e.msgs.Append(ctx, conv.ID, "marco", "posso unirmi?"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("outsider append: want ErrForbidden, got %v", err)
	}
	if _, err := e.msgs.Append(ctx, "missing-conv", "anna", "ciao"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown conversation: want ErrNotFound, got %v", err)
	}

	// None of the failures may have inserted a row.
	list, err := e.msgs.List(ctx, conv.ID, "anna")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed appends left %d rows", len(list))
	}
}

func TestAppendBumpsConversationRecency(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	conv, _ := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	before := conv.UpdatedAt

	m, err := e.msgs.Append(ctx, conv.ID, "anna", "Ciao")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	after, err := e.mem.Conversations().Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.UpdatedAt.Before(before) || !after.UpdatedAt.Equal(m.CreatedAt) {
		t.Fatalf("updated_at not bumped to message time: %v vs %v", after.UpdatedAt, m.CreatedAt)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	conv, _ := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	for i := 0; i < 3; i++ {
		if _, err := e.msgs.Append(ctx, conv.ID, "anna", "msg"); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := e.msgs.MarkRead(ctx, conv.ID, "luca"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	first, _ := e.msgs.List(ctx, conv.ID, "luca")

	if err := e.msgs.MarkRead(ctx, conv.ID, "luca"); err != nil {
		t.Fatalf("second MarkRead must be a no-op, got %v", err)
	}
	second, _ := e.msgs.List(ctx, conv.ID, "luca")

	for i := range first {
		if !first[i].Read || !second[i].Read {
			t.Fatalf("message %d not read after MarkRead", i)
		}
	}

	// The sender's own messages are untouched by the sender calling it.
	if err := e.msgs.MarkRead(ctx, conv.ID, "anna"); err != nil {
		t.Fatalf("MarkRead by sender: %v", err)
	}
	n, _ := e.msgs.UnreadCount(ctx, "luca")
	if n != 0 {
		t.Fatalf("unread for luca after MarkRead: %d", n)
	}
}

func TestMarkReadRequiresParticipant(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	e.addProfile("marco", "Marco Verdi")
	ctx := context.Background()

	conv, _ := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	if err := e.msgs.MarkRead(ctx, conv.ID, "marco"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("outsider MarkRead: want ErrForbidden, got %v", err)
	}
}

func TestUnreadCountAcrossConversations(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	e.addProfile("marco", "Marco Verdi")
	ctx := context.Background()

	withLuca, _ := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	withMarco, _ := e.convs.ResolveOrCreate(ctx, "anna", "marco")

	e.msgs.Append(ctx, withLuca.ID, "luca", "uno")
	e.msgs.Append(ctx, withLuca.ID, "luca", "due")
	e.msgs.Append(ctx, withMarco.ID, "marco", "tre")

	n, err := e.msgs.UnreadCount(ctx, "anna")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 unread, got %d", n)
	}

	if err := e.msgs.MarkRead(ctx, withLuca.ID, "anna"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	n, _ = e.msgs.UnreadCount(ctx, "anna")
	if n != 1 {
		t.Fatalf("expected marco's message to stay unread, got %d", n)
	}
}

func TestFirstContactScenario(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	conv, err := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if _, err := e.msgs.Append(ctx, conv.ID, "anna", "Ciao, caffè venerdì?"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n, _ := e.msgs.UnreadCount(ctx, "luca"); n != 1 {
		t.Fatalf("luca unread: want 1, got %d", n)
	}

	if err := e.msgs.MarkRead(ctx, conv.ID, "luca"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := e.msgs.UnreadCount(ctx, "luca"); n != 0 {
		t.Fatalf("luca unread after MarkRead: want 0, got %d", n)
	}

	if _, err := e.msgs.Append(ctx, conv.ID, "luca", "Va bene, alle 10?"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if n, _ := e.msgs.UnreadCount(ctx, "anna"); n != 1 {
		t.Fatalf("anna unread: want 1, got %d", n)
	}
}

func TestAppendPublishesFeedEvents(t *testing.T) {
	e := newEnv()
	e.addProfile("anna", "Anna Rossi")
	e.addProfile("luca", "Luca Bianchi")
	ctx := context.Background()

	conv, _ := e.convs.ResolveOrCreate(ctx, "anna", "luca")
	sub := e.broker.Subscribe(feed.Filter{ConversationID: conv.ID})
	defer sub.Cancel()

	m, err := e.msgs.Append(ctx, conv.ID, "anna", "Ciao")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	ev := <-sub.Events()
	if ev.Type != feed.MessageInserted || ev.Message == nil || ev.Message.ID != m.ID {
		t.Fatalf("unexpected insert event: %+v", ev)
	}

	if err := e.msgs.MarkRead(ctx, conv.ID, "luca"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	ev = <-sub.Events()
	if ev.Type != feed.MessageUpdated || ev.ConversationID != conv.ID {
		t.Fatalf("unexpected update event: %+v", ev)
	}

	// MarkRead with nothing left to flip publishes nothing.
	if err := e.msgs.MarkRead(ctx, conv.ID, "luca"); err != nil {
		t.Fatalf("idempotent MarkRead: %v", err)
	}
	select {
	case ev := <-sub.Events():
		t.Fatalf("no-op MarkRead published %+v", ev)
	default:
	}
}
