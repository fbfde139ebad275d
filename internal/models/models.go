package models

import "time"

// Profile is the public account record kept alongside auth users.
type Profile struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Interests    string    `bson:"interests,omitempty" json:"interests,omitempty"`
	AvatarURL    string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Availability string    `bson:"availability,omitempty" json:"availability,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Conversation is the single channel between two users. Participants are
// stored in canonical order (ParticipantA < ParticipantB) so the unique
// index on the pair holds regardless of who opened the conversation.
type Conversation struct {
	ID           string    `bson:"_id" json:"id"`
	ParticipantA string    `bson:"participant_a" json:"participant_a"`
	ParticipantB string    `bson:"participant_b" json:"participant_b"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CanonicalPair returns the two ids in storage order.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other returns the participant that is not userID. Empty when userID is
// not a participant.
func (c *Conversation) Other(userID string) string {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	}
	return ""
}

type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Content        string    `bson:"content" json:"content"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	Read           bool      `bson:"read" json:"read"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationRejected:
		return true
	}
	return false
}

// Invitation is the one-shot "coffee invite" channel. It is deliberately
// independent from conversations: accepting one does not open a chat.
type Invitation struct {
	ID         string           `bson:"_id" json:"id"`
	SenderID   string           `bson:"sender_id" json:"sender_id"`
	ReceiverID string           `bson:"receiver_id" json:"receiver_id"`
	Message    string           `bson:"message" json:"message"`
	Status     InvitationStatus `bson:"status" json:"status"`
	CreatedAt  time.Time        `bson:"created_at" json:"created_at"`
	Sender     *Profile         `bson:"-" json:"sender,omitempty"`
}
