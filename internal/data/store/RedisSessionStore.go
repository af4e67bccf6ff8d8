package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/redisStore"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

type exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GetRedisSessionStore returns nil when Redis is offline; main falls
// back to the in-memory store in that case.
func GetRedisSessionStore(ctx context.Context, addr string, password string) *RedisSessionStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisSessionStore, addr, password)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

// TestSessionStore wires a miniredis-backed store for tests.
func TestSessionStore(inner *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("test session store"),
	}
}

func (s *RedisSessionStore) AppendExchange(ctx context.Context, sessionId string, question string, answer string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", sessionId)

	data, err := json.Marshal(exchange{Question: question, Answer: answer})
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, sessionKey(sessionId), data); err != nil {
		log.Error("error saving exchange", "error", err)
		return err
	}
	// Sessions expire with client retention, not server state.
	if err := s.store.Expire(ctx, sessionKey(sessionId), config.RedisSessionTTL); err != nil {
		log.Warn("could not refresh session ttl", "error", err)
	}
	return nil
}

func (s *RedisSessionStore) GetHistory(ctx context.Context, sessionId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session", sessionId)

	raw, err := s.store.ListTail(ctx, sessionKey(sessionId), config.SessionHistoryDepth)
	if err != nil {
		log.Error("error getting history", "error", err)
		return nil, err
	}

	history := make([]string, 0, len(raw))
	for _, entry := range raw {
		var e exchange
		if err := json.Unmarshal([]byte(entry), &e); err != nil {
			log.Warn("skipping malformed history entry", "error", err)
			continue
		}
		history = append(history, formatExchange(e))
	}
	return history, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func formatExchange(e exchange) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", e.Question, e.Answer)
}
