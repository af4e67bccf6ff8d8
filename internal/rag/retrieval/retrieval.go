// Package retrieval embeds a user query, pulls candidate chunks from the
// vector store and turns them into a ranked, formatted context block.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ramate-ai/ramate/internal/metrics"
	"github.com/ramate-ai/ramate/internal/rag/embedding"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

// Fixed keywords appended to queries that don't mention them, biasing
// retrieval toward the training-document domain. A documented string
// transformation, nothing hidden in the embedding call.
var domainKeywords = []string{"resident assistant", "residence hall", "procedure"}

type Engine struct {
	embedder embedding.Embedder
	store    vectorDB.DataProcessor
	topK     uint64
	epsilon  float32
	logger   *logger_i.Logger
}

func NewEngine(embedder embedding.Embedder, store vectorDB.DataProcessor, topK int, epsilon float32) *Engine {
	return &Engine{
		embedder: embedder,
		store:    store,
		topK:     uint64(topK),
		epsilon:  epsilon,
		logger:   logger_i.NewLogger("Retrieval"),
	}
}

// Retrieve returns the re-ranked top-K matches for the query. An empty
// or unreachable index degrades to an empty result set; the answer
// generator handles that case, not the API boundary.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]vectorDB.Match, error) {
	vector, err := e.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.RetrieveWithVector(ctx, query, vector), nil
}

// RetrieveWithVector searches with an already-computed query embedding,
// so callers that need the vector for the answer cache embed only once.
func (e *Engine) RetrieveWithVector(ctx context.Context, rawQuery string, vector []float32) []vectorDB.Match {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := e.store.Search(ctx, vector, e.topK)
	if err != nil {
		e.logger.Warn("search degraded to empty result set", "error", err)
		return nil
	}
	return Rerank(rawQuery, matches, e.epsilon)
}

// EmbedQuery embeds the keyword-enhanced query.
func (e *Engine) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()
	return e.embedder.GetEmbedding(ctx, EnhanceQuery(query))
}

// EmbedBatch embeds document chunks for indexing.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embedder.BatchEmbedding(ctx, texts)
}

// EnhanceQuery appends the domain keywords the query doesn't already
// mention. Pure and deterministic.
func EnhanceQuery(query string) string {
	lower := strings.ToLower(query)
	enhanced := query
	for _, kw := range domainKeywords {
		if !strings.Contains(lower, kw) {
			enhanced += " " + kw
		}
	}
	return enhanced
}

// Rerank orders matches by similarity, breaking near-ties (scores within
// epsilon) by raw-query keyword overlap, then document diversity, then
// ingestion recency. Full ties keep the store's insertion order.
func Rerank(rawQuery string, matches []vectorDB.Match, epsilon float32) []vectorDB.Match {
	queryTokens := Tokenize(rawQuery)

	remaining := make([]vectorDB.Match, len(matches))
	copy(remaining, matches)

	out := make([]vectorDB.Match, 0, len(matches))
	pickedDocs := make(map[string]bool)

	for len(remaining) > 0 {
		best := 0
		for i := 1; i < len(remaining); i++ {
			if betterMatch(remaining[i], remaining[best], queryTokens, pickedDocs, epsilon) {
				best = i
			}
		}
		picked := remaining[best]
		out = append(out, picked)
		pickedDocs[picked.DocId] = true
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return out
}

func betterMatch(a, b vectorDB.Match, queryTokens map[string]bool, pickedDocs map[string]bool, epsilon float32) bool {
	if a.Score > b.Score+epsilon {
		return true
	}
	if b.Score > a.Score+epsilon {
		return false
	}

	aOverlap := overlapCount(queryTokens, a.Content)
	bOverlap := overlapCount(queryTokens, b.Content)
	if aOverlap != bOverlap {
		return aOverlap > bOverlap
	}

	aNewDoc := !pickedDocs[a.DocId]
	bNewDoc := !pickedDocs[b.DocId]
	if aNewDoc != bNewDoc {
		return aNewDoc
	}

	return a.IngestedAt > b.IngestedAt
}

// FormatContext renders matches into the prompt context block, one
// source-labelled section per chunk in rank order.
func FormatContext(matches []vectorDB.Match) string {
	if len(matches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(matches))
	for i, m := range matches {
		parts = append(parts, fmt.Sprintf("[Source %d]\nDocument: %s\nPage: %d\nContent: %s",
			i+1, m.DocTitle, m.Page, strings.TrimSpace(m.Content)))
	}
	return strings.Join(parts, "\n\n")
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "do": true, "for": true, "from": true, "how": true,
	"i": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "will": true, "with": true,
}

// Tokenize lowercases, strips punctuation and drops stopwords. Shared by
// the re-ranker and the confidence scorer.
func Tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?:;()[]'\"-/")
		if len(word) > 1 && !stopwords[word] {
			tokens[word] = true
		}
	}
	return tokens
}

func overlapCount(queryTokens map[string]bool, content string) int {
	count := 0
	for token := range Tokenize(content) {
		if queryTokens[token] {
			count++
		}
	}
	return count
}
