package model

import "time"

// Message is a single chat message between a student and the instructor.
//
// There is no Conversation entity — a "conversation" is derived at query time
// from the flat message log, keyed by (sender, recipient) in both directions.
//
// SenderName and SenderRole are denormalized: they are snapshotted from the
// sender's account when the message is created and never refreshed, so a
// later rename doesn't rewrite chat history.
//
// Messages are immutable once created; there is no edit or delete path. The
// Read flag exists in the schema but no mutation path touches it.
type Message struct {
	ID          string    `json:"_id"`
	SenderID    string    `json:"sender"`
	RecipientID string    `json:"recipient"`
	SenderName  string    `json:"senderName"`
	SenderRole  Role      `json:"senderRole"`
	Text        string    `json:"text"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"timestamp"`
}
