package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem SessionStore")

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]exchange
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string][]exchange),
	}
}

func (s *InMemorySessionStore) AppendExchange(ctx context.Context, sessionId string, question string, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionId] = append(s.sessions[sessionId], exchange{Question: question, Answer: answer})
	inMemLogger.Debug("saved exchange", "session", sessionId)
	return nil
}

func (s *InMemorySessionStore) GetHistory(ctx context.Context, sessionId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.sessions[sessionId]
	if len(exchanges) > config.SessionHistoryDepth {
		exchanges = exchanges[len(exchanges)-config.SessionHistoryDepth:]
	}

	history := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		history = append(history, fmt.Sprintf("Question: %s\nAnswer: %s", e.Question, e.Answer))
	}
	return history, nil
}
