package rag_test

import (
	"context"

	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
)

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type MockVectorDB struct {
	OnSearch          func(ctx context.Context, vector []float32, limit uint64) ([]vectorDB.Match, error)
	OnHealth          func(ctx context.Context) (uint64, bool)
	OnStage           func(ctx context.Context) (string, error)
	OnUpsertBatch     func(ctx context.Context, coll string, chunks []domain.DocChunk, vectors [][]float32) error
	OnPromote         func(ctx context.Context, staged string) error
	OnDiscard         func(ctx context.Context, staged string) error
	OnGetCachedAnswer func(ctx context.Context, vector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, vector []float32, answer string) error
}

func (m *MockVectorDB) Search(ctx context.Context, vector []float32, limit uint64) ([]vectorDB.Match, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, limit)
	}
	return nil, nil
}

func (m *MockVectorDB) Health(ctx context.Context) (uint64, bool) {
	if m.OnHealth != nil {
		return m.OnHealth(ctx)
	}
	return 0, false
}

func (m *MockVectorDB) StageCollection(ctx context.Context) (string, error) {
	if m.OnStage != nil {
		return m.OnStage(ctx)
	}
	return "staged-collection", nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []domain.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, coll, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) PromoteCollection(ctx context.Context, staged string) error {
	if m.OnPromote != nil {
		return m.OnPromote(ctx, staged)
	}
	return nil
}

func (m *MockVectorDB) DiscardCollection(ctx context.Context, staged string) error {
	if m.OnDiscard != nil {
		return m.OnDiscard(ctx, staged)
	}
	return nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, vector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, vector)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

type MockLLM struct {
	OnGenerate func(ctx context.Context, system string, user string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, system string, user string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, system, user)
	}
	return "mock answer", nil
}

type MockSessionStore struct {
	OnAppendExchange func(ctx context.Context, sessionId, question, answer string) error
	OnGetHistory     func(ctx context.Context, sessionId string) ([]string, error)
}

func (m *MockSessionStore) AppendExchange(ctx context.Context, sessionId, question, answer string) error {
	if m.OnAppendExchange != nil {
		return m.OnAppendExchange(ctx, sessionId, question, answer)
	}
	return nil
}

func (m *MockSessionStore) GetHistory(ctx context.Context, sessionId string) ([]string, error) {
	if m.OnGetHistory != nil {
		return m.OnGetHistory(ctx, sessionId)
	}
	return nil, nil
}
