package generation

import (
	"math"
	"strings"

	"github.com/ramate-ai/ramate/internal/rag/retrieval"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
)

// Confidence weighting. An explicit heuristic carried over as-is, not a
// calibrated probability; treat the result as a rough reliability hint.
const (
	weightSourceRelevance = 0.4
	weightCompleteness    = 0.3
	weightGrounding       = 0.2
	weightComplexityMatch = 0.1
)

// confidenceScore combines four normalized signals into [0,1], rounded
// to 3 decimals. With no retrieved sources the relevance and grounding
// components are zero, which keeps context-less answers low.
func confidenceScore(query, answer string, matches []vectorDB.Match) float64 {
	score := weightSourceRelevance*sourceRelevance(matches) +
		weightCompleteness*completeness(answer) +
		weightGrounding*grounding(answer, matches) +
		weightComplexityMatch*complexityMatch(query, answer)

	return math.Round(clamp01(score)*1000) / 1000
}

// sourceRelevance is the mean similarity of the cited chunks.
func sourceRelevance(matches []vectorDB.Match) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += float64(m.Score)
	}
	return clamp01(sum / float64(len(matches)))
}

// completeness rewards non-trivial length and visible structure
// (bullets, numbered steps, multiple sentences).
func completeness(answer string) float64 {
	words := len(strings.Fields(answer))
	if words == 0 {
		return 0
	}

	lengthScore := clamp01(float64(words) / 80.0)

	structure := 0.0
	if strings.Contains(answer, "\n-") || strings.Contains(answer, "\n•") || strings.Contains(answer, "\n1.") {
		structure = 1.0
	} else if strings.Count(answer, ". ") >= 2 {
		structure = 0.5
	}

	return clamp01(0.7*lengthScore + 0.3*structure)
}

// grounding is the share of answer tokens that also appear in the
// retrieved context, a lexical proxy for factual consistency.
func grounding(answer string, matches []vectorDB.Match) float64 {
	if len(matches) == 0 {
		return 0
	}

	answerTokens := retrieval.Tokenize(answer)
	if len(answerTokens) == 0 {
		return 0
	}

	var contextText strings.Builder
	for _, m := range matches {
		contextText.WriteString(m.Content)
		contextText.WriteString(" ")
	}
	contextTokens := retrieval.Tokenize(contextText.String())

	overlap := 0
	for token := range answerTokens {
		if contextTokens[token] {
			overlap++
		}
	}
	return clamp01(float64(overlap) / float64(len(answerTokens)))
}

// complexityMatch checks whether answer length scales with query
// length: short questions should not get essays, detailed questions
// should not get one-liners.
func complexityMatch(query, answer string) float64 {
	queryWords := len(strings.Fields(query))
	answerWords := len(strings.Fields(answer))
	if queryWords == 0 || answerWords == 0 {
		return 0
	}

	expected := float64(20 + 4*queryWords)
	deviation := math.Abs(float64(answerWords)-expected) / expected
	return clamp01(1 - deviation)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
