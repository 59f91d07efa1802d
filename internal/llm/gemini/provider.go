package gemini

import (
	"context"
	"fmt"

	"askpdf/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// defaultEmbedBatch bounds how many texts go into one BatchEmbedContents call
// when the config does not say otherwise.
const defaultEmbedBatch = 16

// Provider serves both generation and embeddings over a single genai client
// constructed once at startup and shared for the process lifetime.
type Provider struct {
	client     *genai.Client
	apiKey     string
	model      string
	embedModel string
	embedBatch int
}

// NewProvider creates a Gemini provider. The client is dialed here, once;
// callers pass the provider by reference into the workflow components.
func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	batch := cfg.EmbedBatch
	if batch <= 0 {
		batch = defaultEmbedBatch
	}
	return &Provider{
		client:     client,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		embedBatch: batch,
	}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// Generate runs the model over the prompt with temperature 0 and flattens
// the response parts to plain text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	model := p.client.GenerativeModel(p.model)
	var temperature float32 = 0.0
	model.Temperature = &temperature

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	return output, nil
}

// EmbedTexts embeds all texts in order, batching requests to keep payloads
// bounded.
func (p *Provider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := p.client.EmbeddingModel(p.embedModel)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.embedBatch {
		end := start + p.embedBatch
		if end > len(texts) {
			end = len(texts)
		}

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini batch embed: %w", err)
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}

	if len(out) != len(texts) {
		return nil, fmt.Errorf("embed size mismatch: got %d want %d", len(out), len(texts))
	}
	return out, nil
}
