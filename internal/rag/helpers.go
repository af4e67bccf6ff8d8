package rag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/metrics"
	"github.com/ramate-ai/ramate/internal/rag/generation"
)

// cachedAnswer is the JSON envelope stored in the semantic answer
// cache. The stored answer must round-trip with its sources and
// confidence so a cache hit looks identical to a fresh generation.
type cachedAnswer struct {
	Answer     string          `json:"answer"`
	Sources    []domain.Source `json:"sources"`
	Confidence float64         `json:"confidence"`
}

func (s *service) checkCache(ctx context.Context, queryVector []float32) (cachedAnswer, bool) {
	payload, found, err := s.vectorDB.GetCachedAnswer(ctx, queryVector)
	if err != nil {
		s.logger.Warn("answer cache lookup failed", "error", err)
		metrics.CountCacheLookup("error")
		return cachedAnswer{}, false
	}
	if !found {
		metrics.CountCacheLookup("miss")
		return cachedAnswer{}, false
	}

	var cached cachedAnswer
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "error", err)
		metrics.CountCacheLookup("error")
		return cachedAnswer{}, false
	}
	metrics.CountCacheLookup("hit")
	return cached, true
}

// saveToCache runs in the background; failures only lose a future
// cache hit, so they are logged and swallowed.
func (s *service) saveToCache(queryVector []float32, result generation.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := json.Marshal(cachedAnswer{
		Answer:     result.Answer,
		Sources:    result.Sources,
		Confidence: result.Confidence,
	})
	if err != nil {
		s.logger.Warn("could not encode answer for cache", "error", err)
		return
	}

	if err := s.vectorDB.SaveToCache(ctx, uuid.New().String(), queryVector, string(payload)); err != nil {
		s.logger.Warn("could not save answer to cache", "error", err)
	}
}
