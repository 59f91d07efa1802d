package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"askpdf/internal/domain"
	"askpdf/internal/ingest"
	"askpdf/internal/llm"
	"askpdf/internal/pdf"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionService owns session lifecycle: creation from an uploaded document
// and deletion across both stores. The vector index and the session store
// have no knowledge of each other; this service keeps them consistent.
type SessionService struct {
	store       domain.SessionStore
	index       domain.VectorIndex
	embedder    llm.Embedder
	extractor   pdf.Extractor
	splitter    *ingest.Splitter
	maxSessions int
	locks       *SessionLocks
}

// NewSessionService creates a new session service
func NewSessionService(
	store domain.SessionStore,
	index domain.VectorIndex,
	embedder llm.Embedder,
	extractor pdf.Extractor,
	splitter *ingest.Splitter,
	maxSessions int,
	locks *SessionLocks,
) *SessionService {
	return &SessionService{
		store:       store,
		index:       index,
		embedder:    embedder,
		extractor:   extractor,
		splitter:    splitter,
		maxSessions: maxSessions,
		locks:       locks,
	}
}

// Create processes an uploaded document into a new session: extract, chunk,
// embed, index under a fresh session id, then initialize empty history and
// metadata. The quota is enforced here, server-side, keyed by the caller's
// identity. Vectors are written before the session record; if the record
// writes fail, the vectors are compensated so no partial session is ever
// observable.
func (s *SessionService) Create(ctx context.Context, owner, path, name string) (*domain.Session, error) {
	count, err := s.store.CountByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if count >= s.maxSessions {
		return nil, fmt.Errorf("%w: maximum %d concurrent sessions", domain.ErrSessionLimit, s.maxSessions)
	}

	blocks, err := s.extractor.ExtractBlocks(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: document contains no extractable text", domain.ErrInvalidInput)
	}

	contents, err := s.splitter.Split(blocks)
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(contents) {
		return nil, fmt.Errorf("embedding count mismatch: got %d want %d", len(vectors), len(contents))
	}

	sessionID := uuid.New().String()
	chunks := make([]domain.Chunk, len(contents))
	for i := range contents {
		chunks[i] = domain.Chunk{
			SessionID: sessionID,
			Position:  i,
			Content:   contents[i],
			Embedding: vectors[i],
		}
	}

	if err := s.index.UpsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:           sessionID,
		Name:         name,
		Owner:        owner,
		ChunkCount:   len(chunks),
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := s.initRecords(ctx, session); err != nil {
		// Compensate the index write so the caller never observes a session
		// that answers searches but has no history.
		if delErr := s.index.DeleteSession(ctx, sessionID); delErr != nil {
			log.Error().Err(delErr).Str("session_id", sessionID).
				Msg("failed to roll back indexed chunks after store failure")
		}
		return nil, err
	}

	return session, nil
}

func (s *SessionService) initRecords(ctx context.Context, session *domain.Session) error {
	if err := s.store.SetHistory(ctx, session.ID, nil); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		if delErr := s.store.DeleteHistory(ctx, session.ID); delErr != nil {
			log.Error().Err(delErr).Str("session_id", session.ID).
				Msg("failed to roll back history after metadata failure")
		}
		return fmt.Errorf("failed to write session metadata: %w", err)
	}
	return nil
}

// Delete removes the session everywhere: history key, metadata, owner
// registration, and every vector tagged with the id. Each side tolerates
// already being absent, so a second delete succeeds.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	err := errors.Join(
		s.store.DeleteHistory(ctx, sessionID),
		s.store.DeleteSession(ctx, sessionID),
		s.index.DeleteSession(ctx, sessionID),
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.locks.forget(sessionID)
	return nil
}
