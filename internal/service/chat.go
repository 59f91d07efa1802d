package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"askpdf/internal/config"
	"askpdf/internal/domain"
	"askpdf/internal/llm"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

// Answer is the result of one question through the retrieval workflow.
type Answer struct {
	Answer             string
	ConversationLength int
}

// ChatService runs the two-stage conversational retrieval workflow:
// session-scoped similarity search, then generation conditioned on the
// retrieved passages and the recent conversation window.
type ChatService struct {
	store     domain.SessionStore
	index     domain.VectorIndex
	embedder  llm.Embedder
	llmRouter *llm.Router
	cfg       config.ChatConfig
	locks     *SessionLocks
}

// NewChatService creates a new chat service
func NewChatService(
	store domain.SessionStore,
	index domain.VectorIndex,
	embedder llm.Embedder,
	llmRouter *llm.Router,
	cfg config.ChatConfig,
	locks *SessionLocks,
) *ChatService {
	return &ChatService{
		store:     store,
		index:     index,
		embedder:  embedder,
		llmRouter: llmRouter,
		cfg:       cfg,
		locks:     locks,
	}
}

// Ask answers a question against the session's document. The whole
// load-generate-persist sequence holds the session lock, so concurrent
// questions on one session serialize instead of losing turns. Durable
// history is only written after a successful generation.
func (s *ChatService) Ask(ctx context.Context, sessionID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: missing question", domain.ErrInvalidInput)
	}

	unlock := s.locks.acquire(sessionID)
	defer unlock()

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	passages, err := s.retrieve(ctx, sessionID, question)
	if err != nil {
		return nil, err
	}

	window := domain.Window(history, s.cfg.HistoryWindow)
	prompt := llm.BuildPrompt(window, llm.JoinPassages(passages), question)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pair := []domain.Turn{
		{Role: domain.RoleHuman, Content: question, Timestamp: now},
		{Role: domain.RoleAI, Content: answer, Timestamp: now},
	}

	// With compaction on, the persisted history is rebuilt from the prompt
	// window plus the new pair, so its length stabilizes near the window
	// size instead of growing without bound.
	var base []domain.Turn
	if s.cfg.CompactHistory {
		base = window
	} else {
		base = history
	}
	updated := make([]domain.Turn, 0, len(base)+len(pair))
	updated = append(updated, base...)
	updated = append(updated, pair...)

	if err := s.store.SetHistory(ctx, sessionID, updated); err != nil {
		return nil, fmt.Errorf("failed to persist history: %w", err)
	}

	s.touch(ctx, sessionID, now)

	return &Answer{Answer: answer, ConversationLength: len(updated)}, nil
}

// retrieve embeds the question and runs the session-filtered top-k search.
// No matches is a valid outcome: the generation stage handles an empty
// context by saying the context is insufficient.
func (s *ChatService) retrieve(ctx context.Context, sessionID, question string) ([]string, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector")
	}

	passages, err := s.index.Search(ctx, sessionID, vectors[0], s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	return passages, nil
}

// generate invokes the provider with a per-attempt timeout and bounded
// backoff retries on transient failures. Provider rejections are not
// retried.
func (s *ChatService) generate(ctx context.Context, prompt string) (string, error) {
	provider, err := s.llmRouter.GetProvider("")
	if err != nil {
		return "", err
	}

	var answer string
	err = retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
			defer cancel()

			out, genErr := provider.Generate(callCtx, prompt)
			if genErr != nil {
				return genErr
			}
			answer = out
			return nil
		},
		retry.Attempts(uint(s.cfg.MaxAttempts)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isTransient),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return answer, nil
}

// isTransient reports whether a generation failure is worth retrying:
// timeouts and network-level errors are, provider rejections are not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// touch updates LastActivity on the session metadata. A missing record is
// logged, not fatal: the question was already answered.
func (s *ChatService) touch(ctx context.Context, sessionID string, now time.Time) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load session metadata")
		return
	}
	session.LastActivity = now
	if err := s.store.PutSession(ctx, session); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to update session activity")
	}
}

// History returns the full stored sequence for a session. A session with no
// recorded history reads as an empty sequence, never an error.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	turns, err := s.store.History(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return []domain.Turn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// ClearHistory resets the stored history to an empty sequence. The session
// and its indexed chunks are untouched.
func (s *ChatService) ClearHistory(ctx context.Context, sessionID string) error {
	unlock := s.locks.acquire(sessionID)
	defer unlock()
	return s.store.SetHistory(ctx, sessionID, nil)
}
