package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/model"
	"github.com/sakif/study-companion/internal/repository"
)

// ChatService routes and lists one-to-one messages between students and the
// instructor.
//
// There is no Conversation entity anywhere: visibility is derived from the
// message log and the caller's role on every read. Students see everything
// they sent or received; the instructor sees one student's thread at a time.
type ChatService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(messages repository.MessageRepository, users repository.UserRepository, logger *slog.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		users:    users,
		logger:   logger,
	}
}

// ListMessages returns the conversation visible to the principal, ordered
// by creation time ascending.
//
//   - instructor without a target: an empty list. The instructor hasn't
//     selected a student yet; this is a deliberate degenerate case, not an
//     error.
//   - instructor with a target: every message between the instructor and
//     that student, in either direction.
//   - student: every message the student sent or received — their whole
//     thread with whichever instructor(s) they've exchanged messages with.
func (s *ChatService) ListMessages(ctx context.Context, principal auth.Principal, targetUserID string) ([]model.Message, error) {
	if principal.Role == model.RoleInstructor {
		if targetUserID == "" {
			return []model.Message{}, nil
		}
		msgs, err := s.messages.ListBetween(ctx, principal.ID, targetUserID)
		if err != nil {
			return nil, fmt.Errorf("service/chat: listing messages with %s: %w", targetUserID, err)
		}
		return msgs, nil
	}

	msgs, err := s.messages.ListForUser(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("service/chat: listing messages for %s: %w", principal.ID, err)
	}
	return msgs, nil
}

// ListConversations returns every student account, for the instructor's
// sidebar. It deliberately lists all students rather than only those with
// message history, so the instructor can start a conversation with anyone.
func (s *ChatService) ListConversations(ctx context.Context) ([]model.User, error) {
	students, err := s.users.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("service/chat: listing students: %w", err)
	}
	return students, nil
}

// SendMessage validates, routes and persists an outbound message.
//
// Routing by sender role:
//   - instructor: an explicit recipient is required (BadRequest otherwise).
//   - student: the recipient resolves to the earliest-created instructor
//     account. The instructor role behaves as a singleton here even though
//     the schema allows several; if no instructor account exists at all the
//     student gets a NotFound.
//
// The sender's name and role are snapshotted onto the message at write time
// and never refreshed afterwards.
func (s *ChatService) SendMessage(ctx context.Context, principal auth.Principal, text, recipientID string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "النص مطلوب")
	}

	if principal.Role == model.RoleInstructor {
		if recipientID == "" {
			return nil, apperror.ValidationFailed("recipientId", "المستلم مطلوب")
		}
	} else {
		instructor, err := s.users.FirstByRole(ctx, model.RoleInstructor)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.NotFound("لا يوجد مشرف متاح حالياً")
			}
			return nil, fmt.Errorf("service/chat: resolving instructor: %w", err)
		}
		recipientID = instructor.ID
	}

	msg := &model.Message{
		SenderID:    principal.ID,
		RecipientID: recipientID,
		SenderName:  principal.Name,
		SenderRole:  principal.Role,
		Text:        text,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Error("failed to send message",
			slog.String("senderID", principal.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/chat: creating message: %w", err)
	}

	s.logger.Info("message sent",
		slog.String("messageID", msg.ID),
		slog.String("senderRole", string(msg.SenderRole)),
	)

	return msg, nil
}
