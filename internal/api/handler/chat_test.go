package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"askpdf/internal/domain"
	"askpdf/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	answer  *service.Answer
	history []domain.Turn
	err     error

	askedSession  string
	askedQuestion string
	cleared       string
}

func (s *stubChat) Ask(ctx context.Context, sessionID, question string) (*service.Answer, error) {
	s.askedSession = sessionID
	s.askedQuestion = question
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *stubChat) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.history == nil {
		return []domain.Turn{}, nil
	}
	return s.history, nil
}

func (s *stubChat) ClearHistory(ctx context.Context, sessionID string) error {
	s.cleared = sessionID
	return s.err
}

type stubDeleter struct {
	deleted string
	err     error
}

func (s *stubDeleter) Delete(ctx context.Context, sessionID string) error {
	s.deleted = sessionID
	return s.err
}

func chatRouter(chat *stubChat, sessions *stubDeleter) http.Handler {
	h := NewChatHandler(chat, sessions)
	r := chi.NewRouter()
	r.Post("/search", h.Search)
	r.Get("/history/{sessionID}", h.GetHistory)
	r.Delete("/history/{sessionID}", h.ClearHistory)
	r.Delete("/session/{sessionID}", h.DeleteSession)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatHandler_Search(t *testing.T) {
	sessionID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		chat := &stubChat{answer: &service.Answer{Answer: "the answer", ConversationLength: 4}}
		router := chatRouter(chat, &stubDeleter{})

		payload := fmt.Sprintf(`{"question":"What is X?","sessionId":"%s"}`, sessionID)
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Search successful", body["message"])
		assert.Equal(t, "the answer", body["answer"])
		assert.Equal(t, sessionID, body["sessionId"])
		assert.Equal(t, float64(4), body["conversationLength"])
		assert.Equal(t, "What is X?", chat.askedQuestion)
	})

	t.Run("invalid body", func(t *testing.T) {
		router := chatRouter(&stubChat{}, &stubDeleter{})

		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString("not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing question", func(t *testing.T) {
		chat := &stubChat{}
		router := chatRouter(chat, &stubDeleter{})

		payload := fmt.Sprintf(`{"sessionId":"%s"}`, sessionID)
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, chat.askedQuestion)
	})

	t.Run("malformed session id", func(t *testing.T) {
		router := chatRouter(&stubChat{}, &stubDeleter{})

		req := httptest.NewRequest(http.MethodPost, "/search",
			bytes.NewBufferString(`{"question":"q","sessionId":"not-a-uuid"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		chat := &stubChat{err: domain.ErrSessionNotFound}
		router := chatRouter(chat, &stubDeleter{})

		payload := fmt.Sprintf(`{"question":"q","sessionId":"%s"}`, sessionID)
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Session not found.", body["message"])
	})

	t.Run("generation failure", func(t *testing.T) {
		chat := &stubChat{err: fmt.Errorf("provider unavailable")}
		router := chatRouter(chat, &stubDeleter{})

		payload := fmt.Sprintf(`{"question":"q","sessionId":"%s"}`, sessionID)
		req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestChatHandler_GetHistory(t *testing.T) {
	sessionID := uuid.NewString()

	t.Run("returns stored turns", func(t *testing.T) {
		chat := &stubChat{history: []domain.Turn{
			{Role: domain.RoleHuman, Content: "hello"},
			{Role: domain.RoleAI, Content: "hi"},
		}}
		router := chatRouter(chat, &stubDeleter{})

		req := httptest.NewRequest(http.MethodGet, "/history/"+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, sessionID, body["sessionId"])
		history, ok := body["history"].([]any)
		require.True(t, ok)
		require.Len(t, history, 2)
		first := history[0].(map[string]any)
		assert.Equal(t, "human", first["type"])
		assert.Equal(t, "hello", first["content"])
	})

	t.Run("empty history is an array, not null", func(t *testing.T) {
		router := chatRouter(&stubChat{}, &stubDeleter{})

		req := httptest.NewRequest(http.MethodGet, "/history/"+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"history":[]`)
	})

	t.Run("malformed session id", func(t *testing.T) {
		router := chatRouter(&stubChat{}, &stubDeleter{})

		req := httptest.NewRequest(http.MethodGet, "/history/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid session ID", body["message"])
	})
}

func TestChatHandler_ClearHistory(t *testing.T) {
	sessionID := uuid.NewString()

	chat := &stubChat{}
	router := chatRouter(chat, &stubDeleter{})

	req := httptest.NewRequest(http.MethodDelete, "/history/"+sessionID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sessionID, chat.cleared)
	body := decodeBody(t, rec)
	assert.Equal(t, "Chat history cleared successfully", body["message"])
}

func TestChatHandler_DeleteSession(t *testing.T) {
	sessionID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		sessions := &stubDeleter{}
		router := chatRouter(&stubChat{}, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/session/"+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, sessionID, sessions.deleted)
		body := decodeBody(t, rec)
		assert.Equal(t, "Session deleted successfully", body["message"])
	})

	t.Run("malformed session id", func(t *testing.T) {
		sessions := &stubDeleter{}
		router := chatRouter(&stubChat{}, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/session/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, sessions.deleted)
	})
}
