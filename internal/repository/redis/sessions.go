package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"askpdf/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "chat_history:"
	sessionKeyPrefix = "session:"
	ownerKeyPrefix   = "sessions:"
)

// SessionStore keeps conversation history and session metadata in Redis.
// History lives under chat_history:<id> as a JSON array; an empty array is
// written at session creation so the key's presence distinguishes "no
// messages yet" from "no such session".
type SessionStore struct {
	client *Client
}

var _ domain.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a session store on top of a shared client.
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func ownerKey(owner string) string {
	return ownerKeyPrefix + owner
}

// History returns the full stored sequence for a session. A missing key maps
// to domain.ErrSessionNotFound; roles are validated strictly on the way out.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	data, err := s.client.rdb.Get(ctx, historyKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var raw []struct {
		Type      string    `json:"type"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	turns := make([]domain.Turn, 0, len(raw))
	for _, m := range raw {
		role, err := domain.ParseRole(m.Type)
		if err != nil {
			return nil, err
		}
		turns = append(turns, domain.Turn{Role: role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return turns, nil
}

// SetHistory replaces the stored sequence. An empty slice is encoded as []
// so the key stays present.
func (s *SessionStore) SetHistory(ctx context.Context, sessionID string, turns []domain.Turn) error {
	if turns == nil {
		turns = []domain.Turn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return s.client.rdb.Set(ctx, historyKey(sessionID), data, 0).Err()
}

// DeleteHistory removes the history key. Deleting an absent key is a no-op.
func (s *SessionStore) DeleteHistory(ctx context.Context, sessionID string) error {
	return s.client.rdb.Del(ctx, historyKey(sessionID)).Err()
}

// PutSession writes session metadata and registers the id under its owner.
func (s *SessionStore) PutSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, 0)
	if session.Owner != "" {
		pipe.SAdd(ctx, ownerKey(session.Owner), session.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// GetSession returns session metadata, or domain.ErrSessionNotFound.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes metadata and the owner registration. The owner set
// membership is looked up from the metadata; if the metadata is already gone
// there is nothing left to unregister.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if session.Owner != "" {
		pipe.SRem(ctx, ownerKey(session.Owner), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CountByOwner reports how many sessions an owner currently holds.
func (s *SessionStore) CountByOwner(ctx context.Context, owner string) (int, error) {
	n, err := s.client.rdb.SCard(ctx, ownerKey(owner)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return int(n), nil
}
