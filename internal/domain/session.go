package domain

import (
	"context"
	"time"
)

// Session is the unit of tenancy: one uploaded document, one conversation.
// The id tags every indexed chunk and keys the stored history; it is generated
// at upload time and never reused.
type Session struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Owner        string    `json:"-"`
	ChunkCount   int       `json:"chunk_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionStore owns conversation history and session metadata. The vector
// index owns the chunk embeddings; neither store references the other, and
// the lifecycle service keeps the two consistent procedurally.
type SessionStore interface {
	// History returns the full stored sequence for a session.
	// Returns ErrSessionNotFound when the history key does not exist.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// SetHistory replaces the stored sequence. Writing an empty slice is
	// valid and keeps the key present.
	SetHistory(ctx context.Context, sessionID string, turns []Turn) error

	// DeleteHistory removes the history key. Deleting an absent key is a
	// no-op.
	DeleteHistory(ctx context.Context, sessionID string) error

	// PutSession writes session metadata and registers the session under its
	// owner.
	PutSession(ctx context.Context, session *Session) error

	// GetSession returns session metadata, or ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// DeleteSession removes metadata and the owner registration. Idempotent.
	DeleteSession(ctx context.Context, sessionID string) error

	// CountByOwner reports how many sessions an owner currently holds.
	CountByOwner(ctx context.Context, owner string) (int, error)
}

// VectorIndex upserts chunk embeddings tagged with a session id and runs
// similarity search restricted to that tag. The tag filter is the sole
// tenancy boundary: every write carries it and every read filters on it.
type VectorIndex interface {
	UpsertChunks(ctx context.Context, chunks []Chunk) error

	// Search returns the contents of the top-k most similar chunks for the
	// session, similarity-descending. No matches yields an empty slice.
	Search(ctx context.Context, sessionID string, embedding []float32, k int) ([]string, error)

	// DeleteSession removes every chunk tagged with the session id. Removing
	// a tag with no chunks is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error
}
