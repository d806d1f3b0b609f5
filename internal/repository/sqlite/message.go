package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// MessageRepo implements repository.MessageRepository on the shared
// connection.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a MessageRepo backed by db.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ repository.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `id, sender_id, recipient_id, sender_name, sender_role, text, read, created_at`

// Create appends a message to the log. Both endpoints must be resolved by
// the caller; the router never persists a message without a recipient.
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, sender_name, sender_role, text, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.SenderName,
		string(msg.SenderRole),
		msg.Text,
		msg.Read,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting message: %w", err)
	}

	return nil
}

// ListBetween returns the conversation between two accounts: messages where
// either is the sender and the other the recipient, oldest first.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB string) ([]model.Message, error) {
	return r.listMessages(ctx,
		`WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)`,
		userA, userB, userB, userA,
	)
}

// ListForUser returns every message the account sent or received, oldest
// first. This is the student's conversation view — their entire exchange
// with whichever instructor(s) they have messaged.
func (r *MessageRepo) ListForUser(ctx context.Context, userID string) ([]model.Message, error) {
	return r.listMessages(ctx,
		`WHERE sender_id = ? OR recipient_id = ?`,
		userID, userID,
	)
}

// listMessages runs a message query with the given WHERE clause, always
// ordered by creation time ascending (with id as a tiebreaker so equal
// timestamps still order deterministically).
func (r *MessageRepo) listMessages(ctx context.Context, where string, args ...any) ([]model.Message, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages `+where+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var (
			m    model.Message
			role string
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.SenderName, &role, &m.Text, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		m.SenderRole = model.Role(role)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
