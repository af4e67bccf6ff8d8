package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

var logger *logger_i.Logger
var clientInstance *ClientHolder
var once sync.Once

// ClientHolder wraps the Qdrant client plus the active collection name.
// Rebuilds stage a fresh collection and swap the name under the lock, so
// concurrent searches never observe a half-built index.
type ClientHolder struct {
	QObj *qdrant.Client

	mu        sync.RWMutex
	active    string
	base      string
	cacheName string
	dimension uint64
}

func GetQdrantClient(ctx context.Context, cfg config.Config) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, cfg)
		if res != nil {
			clientInstance = res
			go closeQdrant(ctx, res.QObj)
		}
	})

	return clientInstance
}

func newClient(ctx context.Context, cfg config.Config) *ClientHolder {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.QdrantHost,
		Port:     cfg.QdrantPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	holder := &ClientHolder{
		QObj:      client,
		base:      cfg.QdrantIndex,
		cacheName: cfg.CacheIndexName,
		dimension: uint64(cfg.EmbeddingDimension),
	}

	if err := holder.adoptLatestCollection(ctx); err != nil {
		logger.Error("could not determine active collection", "error", err)
		return nil
	}
	initCacheCollection(ctx, holder)

	return holder
}

// adoptLatestCollection picks up the newest staged collection left by a
// previous process. A fresh deployment simply starts with no active
// collection and reports not-ready until the first rebuild.
func (db *ClientHolder) adoptLatestCollection(ctx context.Context) error {
	names, err := db.QObj.ListCollections(ctx)
	if err != nil {
		return err
	}

	var candidates []string
	for _, name := range names {
		if strings.HasPrefix(name, db.base+"-") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		logger.Warn("no document collection found, index is empty until first rebuild")
		return nil
	}

	// Staged names end in a UTC timestamp, so the newest sorts last.
	sort.Strings(candidates)
	db.active = candidates[len(candidates)-1]
	logger.Info("adopted document collection", "collection", db.active)
	return nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) activeCollection() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.active
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, limit uint64) ([]vectorDB.Match, error) {
	collection := db.activeCollection()
	if collection == "" {
		return nil, ragerr.ErrRetrievalUnavailable
	}

	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("%w: %v", ragerr.ErrRetrievalUnavailable, err)
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.Match{
			ChunkId:    hit.Payload["chunk_id"].GetStringValue(),
			Content:    hit.Payload["content"].GetStringValue(),
			DocTitle:   hit.Payload["doc_title"].GetStringValue(),
			DocId:      hit.Payload["source_doc_id"].GetStringValue(),
			Page:       int(hit.Payload["page_num"].GetIntegerValue()),
			ChunkIndex: int(hit.Payload["chunk_index"].GetIntegerValue()),
			IngestedAt: hit.Payload["ingested_at"].GetIntegerValue(),
			Score:      hit.Score,
		})
	}

	loggr.Debug("vector search done", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) Health(ctx context.Context) (uint64, bool) {
	collection := db.activeCollection()
	if collection == "" {
		return 0, false
	}
	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{CollectionName: collection})
	if err != nil {
		logger.Error("count failed", "collection", collection, "error", err)
		return 0, false
	}
	return count, count > 0
}

// StageCollection creates a fresh, empty collection for a rebuild to
// load into. The active collection keeps serving reads until promote.
func (db *ClientHolder) StageCollection(ctx context.Context) (string, error) {
	staged := fmt.Sprintf("%s-%s", db.base, time.Now().UTC().Format("20060102150405"))
	if err := createCollection(ctx, db.QObj, staged, db.dimension); err != nil {
		return "", fmt.Errorf("staging collection %s: %w", staged, err)
	}
	return staged, nil
}

// PromoteCollection atomically repoints reads at the staged collection
// and drops the previous one.
func (db *ClientHolder) PromoteCollection(ctx context.Context, staged string) error {
	db.mu.Lock()
	previous := db.active
	db.active = staged
	db.mu.Unlock()

	logger.Info("promoted collection", "collection", staged, "previous", previous)

	if previous != "" && previous != staged {
		if err := db.QObj.DeleteCollection(ctx, previous); err != nil {
			// The swap already happened; a stale collection only wastes disk.
			logger.Warn("could not delete previous collection", "collection", previous, "error", err)
		}
	}
	return nil
}

// DiscardCollection drops a staged collection after a failed rebuild so
// a later restart cannot adopt a half-built index.
func (db *ClientHolder) DiscardCollection(ctx context.Context, staged string) error {
	if staged == "" || staged == db.activeCollection() {
		return nil
	}
	return db.QObj.DeleteCollection(ctx, staged)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []domain.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Text,
				"page_num":      chunk.PageNum,
				"source_doc_id": chunk.Doc.Id,
				"doc_title":     chunk.Doc.Title,
				"source_file":   chunk.Doc.SourceFile,
				"chunk_index":   chunk.ChunkIndex,
				"chunk_id":      chunk.ChunkId,
				"ingested_at":   chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
