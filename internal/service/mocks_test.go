package service

import (
	"context"

	"askpdf/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockSessionStore mocks the domain.SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Turn), args.Error(1)
}

func (m *MockSessionStore) SetHistory(ctx context.Context, sessionID string, turns []domain.Turn) error {
	args := m.Called(ctx, sessionID, turns)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteHistory(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) PutSession(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) CountByOwner(ctx context.Context, owner string) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

// MockVectorIndex mocks the domain.VectorIndex interface
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockVectorIndex) Search(ctx context.Context, sessionID string, embedding []float32, k int) ([]string, error) {
	args := m.Called(ctx, sessionID, embedding, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVectorIndex) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockEmbedder mocks llm.Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockGenerator mocks llm.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Name() string {
	return "mock"
}

func (m *MockGenerator) IsConfigured() bool {
	return true
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockExtractor mocks pdf.Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractBlocks(path string) ([]string, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
