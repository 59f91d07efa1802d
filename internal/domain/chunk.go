package domain

// Chunk is one indexed passage of an uploaded document. Chunks are immutable
// once indexed: there is no update path, only delete-on-session-removal.
type Chunk struct {
	SessionID string
	Position  int
	Content   string
	Embedding []float32
}
