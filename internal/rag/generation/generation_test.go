package generation

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
)

type mockProvider struct {
	generateFunc func(ctx context.Context, system string, user string) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, system string, user string) (string, error) {
	return m.generateFunc(ctx, system, user)
}

func TestConfidenceScore_Bounds(t *testing.T) {
	matches := []vectorDB.Match{
		{Content: "Fire alarm evacuation procedure for residents.", Score: 0.95},
		{Content: "Residents gather at the assembly point.", Score: 0.90},
	}
	answer := "Pull the fire alarm and evacuate. Residents gather at the assembly point. Take a headcount."

	score := confidenceScore("what is the fire alarm procedure", answer, matches)

	if score < 0 || score > 1 {
		t.Fatalf("confidence out of range: %f", score)
	}
	// rounded to 3 decimals
	if math.Abs(score*1000-math.Round(score*1000)) > 1e-9 {
		t.Errorf("confidence not rounded to 3 decimals: %v", score)
	}
}

func TestConfidenceScore_NoSourcesStaysLow(t *testing.T) {
	answer := "Here is a long detailed answer with many sentences. It keeps going. And going. " +
		strings.Repeat("More words here. ", 20)

	score := confidenceScore("short question", answer, nil)

	// Relevance (0.4) and grounding (0.2) are zero with no sources, so
	// the score cannot reach the weights they carry.
	if score >= 0.4 {
		t.Errorf("score without sources should stay below 0.4, got %f", score)
	}
}

func TestConfidenceScore_EmptyAnswer(t *testing.T) {
	matches := []vectorDB.Match{{Content: "some context", Score: 0.8}}
	score := confidenceScore("question", "", matches)

	// Only the relevance component can contribute.
	if score > 0.4 {
		t.Errorf("empty answer should only earn relevance weight, got %f", score)
	}
}

func TestCompleteness_StructureBonus(t *testing.T) {
	flat := strings.Repeat("word ", 80)
	structured := flat + "\n- first step\n- second step"

	if completeness(structured) <= completeness(flat) {
		t.Errorf("bulleted answer should score higher: %f vs %f", completeness(structured), completeness(flat))
	}
}

func TestGrounding(t *testing.T) {
	matches := []vectorDB.Match{{Content: "fire alarm evacuation headcount assembly"}}

	grounded := grounding("evacuation requires headcount at assembly", matches)
	ungrounded := grounding("completely unrelated topic entirely", matches)

	if grounded <= ungrounded {
		t.Errorf("grounded answer should score higher: %f vs %f", grounded, ungrounded)
	}
	if g := grounding("anything", nil); g != 0 {
		t.Errorf("grounding without context should be 0, got %f", g)
	}
}

func TestAnswer_Success(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, system string, user string) (string, error) {
			if !strings.Contains(user, "QUESTION: what is the duty schedule") {
				t.Errorf("user prompt missing the question: %q", user)
			}
			if !strings.Contains(user, "[Source 1]") {
				t.Errorf("user prompt missing the context block: %q", user)
			}
			return "Duty starts at eight. Check the roster. Escalate emergencies.", nil
		},
	}
	g := NewGenerator(provider, time.Second)

	matches := []vectorDB.Match{
		{DocTitle: "Duty Manual", Page: 3, Content: "Duty starts at eight and the roster lists assignments.", Score: 0.9},
	}
	result := g.Answer(context.Background(), "what is the duty schedule", matches, nil)

	if result.Answer == "" {
		t.Fatal("expected an answer")
	}
	if len(result.Sources) != 1 || result.Sources[0].Document != "Duty Manual" {
		t.Errorf("sources not carried through: %v", result.Sources)
	}
	if result.Confidence <= 0 {
		t.Errorf("successful answer should have positive confidence, got %f", result.Confidence)
	}
}

func TestAnswer_TimeoutFallback(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, system string, user string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	g := NewGenerator(provider, 20*time.Millisecond)

	result := g.Answer(context.Background(), "question", nil, nil)

	if result.Answer != timeoutFallbackAnswer {
		t.Errorf("expected the timeout fallback answer, got %q", result.Answer)
	}
	if result.Confidence != 0.0 {
		t.Errorf("timeout answers carry zero confidence, got %f", result.Confidence)
	}
}

func TestAnswer_ProviderErrorUsesStructuredFallback(t *testing.T) {
	calls := 0
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, system string, user string) (string, error) {
			calls++
			return "", errors.New("connection refused")
		},
	}
	g := NewGenerator(provider, time.Second)

	matches := []vectorDB.Match{
		{DocTitle: "Fire Safety", Page: 2, Content: "Pull the alarm and evacuate the building immediately.", Score: 0.9},
	}
	result := g.Answer(context.Background(), "fire question", matches, nil)

	if calls != 2 {
		t.Errorf("transport errors get exactly one retry, provider called %d times", calls)
	}
	if !strings.Contains(result.Answer, "Pull the alarm") {
		t.Errorf("fallback should summarize retrieved chunks: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "1. Fire Safety (Page 2)") {
		t.Errorf("fallback should list numbered sources: %q", result.Answer)
	}
	if result.Confidence > degradedConfidenceCap {
		t.Errorf("degraded answer confidence capped at %f, got %f", degradedConfidenceCap, result.Confidence)
	}
}

func TestAnswer_NilProvider(t *testing.T) {
	g := NewGenerator(nil, time.Second)

	result := g.Answer(context.Background(), "question", nil, nil)

	if !strings.Contains(result.Answer, "couldn't find relevant information") {
		t.Errorf("expected the no-context fallback, got %q", result.Answer)
	}
	if result.Confidence > degradedConfidenceCap {
		t.Errorf("confidence should be capped, got %f", result.Confidence)
	}
}

func TestCitedSources_Dedup(t *testing.T) {
	matches := []vectorDB.Match{
		{DocTitle: "Duty Manual", Page: 3, Content: "first"},
		{DocTitle: "Duty Manual", Page: 3, Content: "second chunk, same page"},
		{DocTitle: "Duty Manual", Page: 5, Content: "third"},
		{DocTitle: "Fire Safety", Page: 3, Content: "fourth"},
	}

	sources := citedSources(matches)

	if len(sources) != 3 {
		t.Fatalf("expected 3 distinct (document, page) pairs, got %d", len(sources))
	}
	if sources[0].Content != "first" {
		t.Errorf("first chunk's content should win for a repeated pair, got %q", sources[0].Content)
	}
	if sources[1].Page != 5 || sources[2].Document != "Fire Safety" {
		t.Errorf("rank order not preserved: %v", sources)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	withContext := buildUserPrompt("q", "[Source 1]\nDocument: X", nil)
	if !strings.Contains(withContext, "CONTEXT FROM RA TRAINING DOCUMENTS") {
		t.Errorf("context section missing:\n%s", withContext)
	}

	withoutContext := buildUserPrompt("q", "", nil)
	if strings.Contains(withoutContext, "CONTEXT FROM RA TRAINING DOCUMENTS") {
		t.Errorf("empty retrieval must not fabricate a context section:\n%s", withoutContext)
	}
	if !strings.Contains(withoutContext, "No relevant training documents") {
		t.Errorf("no-context instruction missing:\n%s", withoutContext)
	}

	withHistory := buildUserPrompt("q", "", []string{"Question: a\nAnswer: b"})
	if !strings.Contains(withHistory, "RECENT CONVERSATION") {
		t.Errorf("history section missing:\n%s", withHistory)
	}
}
