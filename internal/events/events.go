// Package events defines the payloads published to Kafka. The only topic
// today is message.created, which triggers the email notifier.
package events

import "time"

type MessageCreated struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
