package models

import "testing"

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair("luca", "anna")
	if a != "anna" || b != "luca" {
		t.Fatalf("got %s,%s", a, b)
	}
	a2, b2 := CanonicalPair("anna", "luca")
	if a2 != a || b2 != b {
		t.Fatal("CanonicalPair is not order independent")
	}
}

func TestConversationParticipants(t *testing.T) {
	c := &Conversation{ParticipantA: "anna", ParticipantB: "luca"}

	if !c.HasParticipant("anna") || !c.HasParticipant("luca") {
		t.Fatal("participants not recognized")
	}
	if c.HasParticipant("marco") {
		t.Fatal("outsider recognized as participant")
	}
	if c.Other("anna") != "luca" || c.Other("luca") != "anna" {
		t.Fatal("Other returned the wrong counterpart")
	}
	if c.Other("marco") != "" {
		t.Fatal("Other for outsider must be empty")
	}
}
