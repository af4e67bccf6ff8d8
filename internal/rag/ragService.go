package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/store"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/metrics"
	"github.com/ramate-ai/ramate/internal/rag/generation"
	"github.com/ramate-ai/ramate/internal/rag/ingest"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/internal/rag/retrieval"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

// Service is the public contract of the RAG pipeline. Handlers only see
// this; the vector store, embedder and completion provider stay private
// to the implementation so tests can swap them for mocks.
type Service interface {
	Chat(ctx context.Context, query string, sessionId string) domain.QueryRecord
	Rebuild(ctx context.Context) (RebuildReport, error)
	Status(ctx context.Context) StatusReport
}

type RebuildReport struct {
	DocumentsProcessed int                 `json:"documents_processed"`
	ChunksIndexed      int                 `json:"chunks_indexed"`
	Failures           []domain.DocFailure `json:"failures,omitempty"`
	Elapsed            time.Duration       `json:"-"`
	ElapsedSeconds     float64             `json:"elapsed_seconds"`
}

type StatusReport struct {
	VectorStoreStatus string `json:"vector_store_status"`
	TotalDocuments    uint64 `json:"total_documents"`
	EmbeddingMethod   string `json:"embedding_method"`
	AIConfigured      bool   `json:"ai_configured"`
}

type service struct {
	vectorDB  vectorDB.DataProcessor
	retriever *retrieval.Engine
	generator *generation.Generator
	processor ingest.Processor
	sessions  store.SessionStore

	corpusPath      string
	embeddingMethod string
	aiConfigured    bool

	// Rebuild is single-writer; chats read the active collection
	// concurrently and never wait on this.
	rebuildMu sync.Mutex

	logger *logger_i.Logger
}

type ServiceConfig struct {
	VectorDB        vectorDB.DataProcessor
	Retriever       *retrieval.Engine
	Generator       *generation.Generator
	Processor       ingest.Processor
	Sessions        store.SessionStore
	CorpusPath      string
	EmbeddingMethod string
	AIConfigured    bool
}

func NewService(cfg ServiceConfig) Service {
	return &service{
		vectorDB:        cfg.VectorDB,
		retriever:       cfg.Retriever,
		generator:       cfg.Generator,
		processor:       cfg.Processor,
		sessions:        cfg.Sessions,
		corpusPath:      cfg.CorpusPath,
		embeddingMethod: cfg.EmbeddingMethod,
		aiConfigured:    cfg.AIConfigured,
		logger:          logger_i.NewLogger("RAG Service"),
	}
}

// Chat runs the full pipeline for one query. It always produces a
// QueryRecord: retrieval and completion failures degrade to fallback
// answers with low confidence instead of propagating.
func (s *service) Chat(ctx context.Context, query string, sessionId string) domain.QueryRecord {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", sessionId)
	start := time.Now()
	status := "success"
	defer func() { metrics.CaptureChatMetrics(status, time.Since(start)) }()

	history := s.sessionHistory(ctx, sessionId, log)

	record := domain.QueryRecord{
		QueryId:   uuid.New().String(),
		SessionId: sessionId,
		Query:     query,
		Timestamp: time.Now(),
	}

	queryVector, err := s.retriever.EmbedQuery(ctx, query)
	if err != nil {
		// Without an embedding there is nothing to retrieve or cache;
		// answer from general instruction only, flagged low-confidence.
		log.Warn("query embedding failed, answering without context", "error", err)
		status = "degraded"
		result := s.generator.Answer(ctx, query, nil, history)
		return s.finishRecord(ctx, record, result, log)
	}

	if cached, found := s.checkCache(ctx, queryVector); found {
		log.Debug("semantic cache hit")
		record.Answer = cached.Answer
		record.Sources = cached.Sources
		record.Confidence = cached.Confidence
		s.saveExchange(ctx, record, log)
		return record
	}

	matches := s.retriever.RetrieveWithVector(ctx, query, queryVector)
	result := s.generator.Answer(ctx, query, matches, history)

	if result.Confidence >= config.LowConfidenceThreshold {
		// Background save keeps the cache off the request path.
		go s.saveToCache(queryVector, result)
	}

	return s.finishRecord(ctx, record, result, log)
}

func (s *service) finishRecord(ctx context.Context, record domain.QueryRecord, result generation.Result, log *logger_i.Logger) domain.QueryRecord {
	record.Answer = result.Answer
	record.Sources = result.Sources
	if record.Sources == nil {
		record.Sources = []domain.Source{}
	}
	record.Confidence = result.Confidence
	s.saveExchange(ctx, record, log)
	return record
}

func (s *service) sessionHistory(ctx context.Context, sessionId string, log *logger_i.Logger) []string {
	if sessionId == "" {
		return nil
	}
	history, err := s.sessions.GetHistory(ctx, sessionId)
	if err != nil {
		log.Warn("could not load session history", "error", err)
		return nil
	}
	return history
}

func (s *service) saveExchange(ctx context.Context, record domain.QueryRecord, log *logger_i.Logger) {
	if record.SessionId == "" {
		return
	}
	if err := s.sessions.AppendExchange(ctx, record.SessionId, record.Query, record.Answer); err != nil {
		log.Warn("could not save session exchange", "error", err)
	}
}

// Rebuild reprocesses the corpus into a staged collection and promotes
// it atomically. Unreadable documents are skipped and reported; the
// rebuild completes with the successful subset.
func (s *service) Rebuild(ctx context.Context) (RebuildReport, error) {
	if !s.rebuildMu.TryLock() {
		return RebuildReport{}, ragerr.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	start := time.Now()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Info("rebuild started", "corpus", s.corpusPath)

	res, err := s.processor.Process(s.corpusPath)
	if err != nil {
		metrics.CountRebuild("error")
		return RebuildReport{}, err
	}
	if len(res.Chunks) == 0 {
		metrics.CountRebuild("empty")
		return RebuildReport{Failures: res.Failures}, fmt.Errorf("%w: no readable documents found in corpus", ragerr.ErrValidation)
	}

	staged, err := s.vectorDB.StageCollection(ctx)
	if err != nil {
		metrics.CountRebuild("error")
		return RebuildReport{}, err
	}

	if err := s.indexChunks(ctx, staged, res.Chunks); err != nil {
		if discardErr := s.vectorDB.DiscardCollection(ctx, staged); discardErr != nil {
			log.Warn("could not discard staged collection", "collection", staged, "error", discardErr)
		}
		metrics.CountRebuild("error")
		return RebuildReport{}, err
	}

	if err := s.vectorDB.PromoteCollection(ctx, staged); err != nil {
		metrics.CountRebuild("error")
		return RebuildReport{}, err
	}

	elapsed := time.Since(start)
	metrics.CountRebuild("success")
	metrics.SetIndexedChunks(float64(len(res.Chunks)))
	metrics.CaptureExecutionMetrics("document_ingestion", elapsed)
	log.Info("rebuild complete", "documents", len(res.Documents), "chunks", len(res.Chunks), "failures", len(res.Failures), "elapsed", elapsed)

	return RebuildReport{
		DocumentsProcessed: len(res.Documents),
		ChunksIndexed:      len(res.Chunks),
		Failures:           res.Failures,
		Elapsed:            elapsed,
		ElapsedSeconds:     elapsed.Seconds(),
	}, nil
}

func (s *service) Status(ctx context.Context) StatusReport {
	count, ready := s.vectorDB.Health(ctx)

	storeStatus := "empty"
	if ready {
		storeStatus = "healthy"
	}
	return StatusReport{
		VectorStoreStatus: storeStatus,
		TotalDocuments:    count,
		EmbeddingMethod:   s.embeddingMethod,
		AIConfigured:      s.aiConfigured,
	}
}

var errBatchMismatch = errors.New("embedding batch size mismatch")

// indexChunks embeds and upserts in fixed-size batches so one oversized
// corpus cannot balloon a single API call.
func (s *service) indexChunks(ctx context.Context, staged string, chunks []domain.DocChunk) error {
	batchSize := config.EmbeddingBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := s.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: got %d vectors for %d chunks", errBatchMismatch, len(vectors), len(batch))
		}

		if err := s.vectorDB.UpsertBatch(ctx, staged, batch, vectors); err != nil {
			return fmt.Errorf("upserting batch failed: %w", err)
		}
	}
	return nil
}

func (s *service) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("batch_embedding", time.Since(start)) }()
	return s.retriever.EmbedBatch(ctx, texts)
}
