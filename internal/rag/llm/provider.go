package llm

import "context"

// Provider is a black-box text completion: a system instruction and a
// user turn in, the reply text out. Response-shape validation happens
// inside each implementation; callers only ever see text or an error.
type Provider interface {
	Generate(ctx context.Context, system string, user string) (string, error)
}
