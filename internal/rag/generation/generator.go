// Package generation builds prompts from retrieved context, calls the
// completion provider, and attaches cited sources plus a heuristic
// confidence score to the reply.
package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/internal/metrics"
	"github.com/ramate-ai/ramate/internal/rag/llm"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/internal/rag/retrieval"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

// Answers produced without provider output never report more than this,
// keeping degraded replies visibly below the low-confidence threshold.
const degradedConfidenceCap = 0.35

const timeoutFallbackAnswer = "I'm having trouble reaching the language model right now, so I can't " +
	"generate a full answer. Please try again in a moment, or contact your supervisor if the question is urgent."

type Result struct {
	Answer     string
	Sources    []domain.Source
	Confidence float64
}

type Generator struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *logger_i.Logger
}

func NewGenerator(provider llm.Provider, timeout time.Duration) *Generator {
	return &Generator{
		provider: provider,
		timeout:  timeout,
		logger:   logger_i.NewLogger("Answer Generator"),
	}
}

// Answer runs the completion step for one query. It always returns a
// usable Result: timeouts and transport failures degrade to fallback
// text with low confidence instead of an error to the API boundary.
func (g *Generator) Answer(ctx context.Context, query string, matches []vectorDB.Match, history []string) Result {
	contextBlock := retrieval.FormatContext(matches)
	sources := citedSources(matches)

	answer, err := g.complete(ctx, buildUserPrompt(query, contextBlock, history))
	switch {
	case err == nil:
		confidence := confidenceScore(query, answer, matches)
		if len(matches) == 0 {
			confidence = math.Min(confidence, degradedConfidenceCap)
		}
		return Result{Answer: answer, Sources: sources, Confidence: confidence}

	case errors.Is(err, ragerr.ErrCompletionTimeout):
		g.logger.Warn("completion timed out, returning fallback answer", "error", err)
		return Result{Answer: timeoutFallbackAnswer, Sources: sources, Confidence: 0.0}

	default:
		g.logger.Warn("completion unavailable, returning structured fallback", "error", err)
		confidence := math.Min(confidenceScore(query, "", matches), degradedConfidenceCap)
		return Result{Answer: structuredFallback(query, matches), Sources: sources, Confidence: confidence}
	}
}

// complete calls the provider under the configured deadline. Timeouts
// are never retried; one retry is allowed for other transport errors.
func (g *Generator) complete(parent context.Context, userPrompt string) (string, error) {
	if g.provider == nil {
		return "", ragerr.ErrCompletionUnavailable
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()

	answer, err := g.provider.Generate(ctx, systemInstruction, userPrompt)
	if err == nil {
		return answer, nil
	}
	if isTimeout(ctx, err) {
		return "", fmt.Errorf("%w: %v", ragerr.ErrCompletionTimeout, err)
	}

	answer, retryErr := g.provider.Generate(ctx, systemInstruction, userPrompt)
	if retryErr == nil {
		return answer, nil
	}
	if isTimeout(ctx, retryErr) {
		return "", fmt.Errorf("%w: %v", ragerr.ErrCompletionTimeout, retryErr)
	}
	return "", fmt.Errorf("%w: %v", ragerr.ErrCompletionUnavailable, retryErr)
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}

// structuredFallback assembles a degraded answer straight from the
// retrieved chunks when the completion service cannot be reached.
func structuredFallback(query string, matches []vectorDB.Match) string {
	if len(matches) == 0 {
		return "I couldn't find relevant information in the training documents to answer your question. " +
			"Please try rephrasing, or contact your supervisor for assistance."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Regarding: %s\n\nBased on the training documents, here's what I found:\n\n", query)

	for _, m := range matches {
		summary := strings.TrimSpace(m.Content)
		if len(summary) > 200 {
			summary = summary[:200] + "..."
		}
		fmt.Fprintf(&b, "- %s\n\n", summary)
	}

	b.WriteString("Sources:\n")
	for i, s := range citedSources(matches) {
		fmt.Fprintf(&b, "%d. %s (Page %d)\n", i+1, s.Document, s.Page)
	}
	return b.String()
}

// citedSources returns the distinct (document, page) pairs in retrieval
// rank order, keeping the first chunk's content for each pair.
func citedSources(matches []vectorDB.Match) []domain.Source {
	seen := make(map[string]bool)
	var sources []domain.Source

	for _, m := range matches {
		key := fmt.Sprintf("%s:%d", m.DocTitle, m.Page)
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, domain.Source{
			Document: m.DocTitle,
			Page:     m.Page,
			Content:  m.Content,
		})
	}
	return sources
}
