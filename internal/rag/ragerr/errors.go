// Package ragerr holds the sentinel errors for the RAG pipeline. The
// boundary between "degrade to a low-confidence answer" and "fail the
// request" is decided by which of these an error wraps.
package ragerr

import "errors"

var (
	// ErrValidation means bad client input. Handlers map it to a 400 and
	// the completion service is never called.
	ErrValidation = errors.New("validation error")

	// ErrEmptyText is returned by the embedder when the input is empty
	// after cleaning.
	ErrEmptyText = errors.New("empty text after cleaning")

	// ErrRetrievalUnavailable means the index is empty or unreachable.
	// The answer generator degrades to a no-context answer instead of
	// surfacing this to the client.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrCompletionTimeout means the completion call hit its deadline.
	// Never retried; the fallback answer is returned with confidence 0.
	ErrCompletionTimeout = errors.New("completion timeout")

	// ErrCompletionUnavailable covers transport failures and unexpected
	// response shapes from the completion service.
	ErrCompletionUnavailable = errors.New("completion unavailable")

	// ErrConfiguration is fatal at startup. The process refuses to serve.
	ErrConfiguration = errors.New("configuration error")

	// ErrRebuildInProgress is returned when a rebuild is requested while
	// another one holds the ingestion lock.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)
