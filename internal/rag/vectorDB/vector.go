package vectorDB

import (
	"context"

	"github.com/ramate-ai/ramate/internal/domain"
)

// Match is one scored nearest-neighbor hit with the payload fields the
// retrieval engine needs to cite and re-rank it.
type Match struct {
	ChunkId    string
	Content    string
	DocTitle   string
	DocId      string
	Page       int
	ChunkIndex int
	IngestedAt int64
	Score      float32
}

type DataProcessor interface {
	Search(ctx context.Context, vector []float32, limit uint64) ([]Match, error)
	Health(ctx context.Context) (count uint64, ready bool)

	// Rebuild path: bulk-load into a staged collection, then promote it.
	// Readers keep hitting the old collection until the promote, so a
	// rebuild in progress is never partially visible.
	StageCollection(ctx context.Context) (string, error)
	UpsertBatch(ctx context.Context, collectionName string, chunks []domain.DocChunk, vectors [][]float32) error
	PromoteCollection(ctx context.Context, staged string) error
	DiscardCollection(ctx context.Context, staged string) error

	// Semantic answer cache.
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
