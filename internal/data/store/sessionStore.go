package store

import "context"

// SessionStore keeps the recent question/answer exchanges for a
// client-generated session id. The history feeds the LLM prompt so
// follow-up questions resolve; it is best-effort state, not the durable
// interaction log.
type SessionStore interface {
	AppendExchange(ctx context.Context, sessionId string, question string, answer string) error
	GetHistory(ctx context.Context, sessionId string) ([]string, error)
}
