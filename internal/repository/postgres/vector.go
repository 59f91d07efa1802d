package postgres

import (
	"context"
	"fmt"

	"askpdf/internal/domain"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// VectorIndex stores chunk embeddings in pgvector. Every row carries the
// owning session id and every query filters on it; that tag is the only
// tenancy boundary between sessions.
type VectorIndex struct {
	db *DB
}

var _ domain.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a vector index over the shared pool.
func NewVectorIndex(db *DB) *VectorIndex {
	return &VectorIndex{db: db}
}

// UpsertChunks inserts all chunks in a single transaction so a failed upload
// never leaves a partially indexed session behind.
func (v *VectorIndex) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO session_chunks (id, session_id, position, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := tx.Exec(ctx, q, uuid.New(), ch.SessionID, ch.Position, ch.Content, vec); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", ch.Position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// Search returns the contents of the top-k chunks for the session by cosine
// similarity, best match first. Zero matches is a valid outcome.
func (v *VectorIndex) Search(ctx context.Context, sessionID string, embedding []float32, k int) ([]string, error) {
	const q = `
		SELECT content
		FROM session_chunks
		WHERE session_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := v.db.Pool.Query(ctx, q, sessionID, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}

// DeleteSession removes every chunk tagged with the session id. Deleting a
// tag with no rows is a no-op, not an error.
func (v *VectorIndex) DeleteSession(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM session_chunks WHERE session_id = $1`
	if _, err := v.db.Pool.Exec(ctx, q, sessionID); err != nil {
		return fmt.Errorf("failed to delete session chunks: %w", err)
	}
	return nil
}
