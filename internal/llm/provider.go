package llm

import "context"

// Generator produces an answer from a rendered prompt. Whatever shape the
// underlying provider returns, implementations normalize it to plain text.
type Generator interface {
	// Name returns the provider identifier
	Name() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate runs the model over the prompt and returns the answer text.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder maps texts to fixed-length vectors.
type Embedder interface {
	// EmbedTexts embeds all texts in order. The result has one vector per
	// input text.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
