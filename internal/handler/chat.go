package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/study-companion/internal/apperror"
	"github.com/sakif/study-companion/internal/auth"
	"github.com/sakif/study-companion/internal/service"
)

// ChatHandler exposes the messaging endpoints.
type ChatHandler struct {
	chat   *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// HandleListMessages returns the conversation visible to the caller.
//
// HTTP: GET /api/messages?userId=...
// The userId query parameter is only meaningful for the instructor (the
// student it wants the thread with); students ignore it and always get
// their own thread. Instructor without userId gets an empty list.
func (h *ChatHandler) HandleListMessages(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	targetUserID := r.URL.Query().Get("userId")

	messages, err := h.chat.ListMessages(r.Context(), principal, targetUserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// HandleListConversations returns every student account for the
// instructor's sidebar.
//
// HTTP: GET /api/messages/conversations (instructor only; gated in routing)
func (h *ChatHandler) HandleListConversations(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	students, err := h.chat.ListConversations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// HandleSendMessage creates a message.
//
// HTTP: POST /api/messages
// Body: {text, recipientId?} — recipientId required for the instructor;
// students are routed to the instructor automatically.
// 201 with the created message.
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request, principal auth.Principal) {
	var req struct {
		Text        string `json:"text"`
		RecipientID string `json:"recipientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("text", "النص مطلوب"))
		return
	}

	msg, err := h.chat.SendMessage(r.Context(), principal, req.Text, req.RecipientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
