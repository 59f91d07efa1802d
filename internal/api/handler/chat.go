package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"askpdf/internal/api/response"
	"askpdf/internal/domain"
	"askpdf/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// ChatRunner is the part of the chat service the handler depends on.
type ChatRunner interface {
	Ask(ctx context.Context, sessionID, question string) (*service.Answer, error)
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// SessionDeleter removes a session from both stores.
type SessionDeleter interface {
	Delete(ctx context.Context, sessionID string) error
}

// ChatHandler handles question, history and session endpoints
type ChatHandler struct {
	chat     ChatRunner
	sessions SessionDeleter
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatRunner, sessions SessionDeleter) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: sessions}
}

type searchRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionID string `json:"sessionId" validate:"required,uuid4"`
}

// Search answers a question in the context of a session.
func (h *ChatHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "Missing or invalid 'question' or 'sessionId'")
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message":            "Search successful",
		"answer":             answer.Answer,
		"sessionId":          req.SessionID,
		"conversationLength": answer.ConversationLength,
	})
}

// GetHistory returns the full stored conversation for a session.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}

	history, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"sessionId": sessionID,
		"history":   history,
	})
}

// ClearHistory resets a session's history; the document stays indexed.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}

	if err := h.chat.ClearHistory(r.Context(), sessionID); err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message":   "Chat history cleared successfully",
		"sessionId": sessionID,
	})
}

// DeleteSession removes the conversation and all indexed chunks.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message":   "Session deleted successfully",
		"sessionId": sessionID,
	})
}

func sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := uuid.Parse(sessionID); err != nil {
		response.BadRequest(w, "Invalid session ID")
		return "", false
	}
	return sessionID, true
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, "Missing 'question' in request body")
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, "Session not found.")
	case errors.Is(err, domain.ErrUnknownRole):
		log.Error().Err(err).Msg("corrupted history entry")
		response.InternalError(w, "Internal server error in search")
	default:
		log.Error().Err(err).Msg("chat request failed")
		response.InternalError(w, "Internal server error in search")
	}
}
