package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/redisStore"
	"github.com/ramate-ai/ramate/internal/data/store"
	"github.com/redis/go-redis/v9"
)

func newRedisSessionStore(t *testing.T) (*store.RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestSessionStore(redisStore.NewTestStore(client)), mr
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	sessions, mr := newRedisSessionStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	sessionId := "sess_abc_123"

	t.Run("Append and Get Roundtrip", func(t *testing.T) {
		if err := sessions.AppendExchange(ctx, sessionId, "how do duty rounds work", "Rounds start at eight."); err != nil {
			t.Fatalf("AppendExchange failed: %v", err)
		}

		history, err := sessions.GetHistory(ctx, sessionId)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("Expected 1 exchange, got %d", len(history))
		}
		if !strings.Contains(history[0], "how do duty rounds work") || !strings.Contains(history[0], "Rounds start at eight.") {
			t.Errorf("history entry malformed: %q", history[0])
		}
	})

	t.Run("History Depth Bounded", func(t *testing.T) {
		for i := 0; i < config.SessionHistoryDepth+3; i++ {
			if err := sessions.AppendExchange(ctx, sessionId, fmt.Sprintf("question %d", i), "answer"); err != nil {
				t.Fatalf("AppendExchange failed: %v", err)
			}
		}

		history, err := sessions.GetHistory(ctx, sessionId)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != config.SessionHistoryDepth {
			t.Errorf("Expected history capped at %d, got %d", config.SessionHistoryDepth, len(history))
		}
		// The tail keeps the newest entries.
		last := history[len(history)-1]
		if !strings.Contains(last, fmt.Sprintf("question %d", config.SessionHistoryDepth+2)) {
			t.Errorf("newest exchange missing from history tail: %q", last)
		}
	})

	t.Run("TTL Set", func(t *testing.T) {
		if mr.TTL("session:"+sessionId) != config.RedisSessionTTL {
			t.Errorf("session key TTL got %v, want %v", mr.TTL("session:"+sessionId), config.RedisSessionTTL)
		}
	})

	t.Run("Unknown Session Empty", func(t *testing.T) {
		history, err := sessions.GetHistory(ctx, "never-seen")
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history, got %v", history)
		}
	})
}

func TestInMemorySessionStore(t *testing.T) {
	sessions := store.InitInMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < config.SessionHistoryDepth+2; i++ {
		if err := sessions.AppendExchange(ctx, "s1", fmt.Sprintf("q%d", i), "a"); err != nil {
			t.Fatalf("AppendExchange failed: %v", err)
		}
	}

	history, err := sessions.GetHistory(ctx, "s1")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != config.SessionHistoryDepth {
		t.Errorf("Expected history capped at %d, got %d", config.SessionHistoryDepth, len(history))
	}

	other, err := sessions.GetHistory(ctx, "s2")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("sessions must be isolated, got %v", other)
	}
}
