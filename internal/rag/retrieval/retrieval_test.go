package retrieval

import (
	"strings"
	"testing"

	"github.com/ramate-ai/ramate/internal/rag/vectorDB"
)

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, enhanced string)
	}{
		{
			name:  "Appends_Missing_Keywords",
			query: "how do I report an incident",
			check: func(t *testing.T, enhanced string) {
				for _, kw := range domainKeywords {
					if !strings.Contains(strings.ToLower(enhanced), kw) {
						t.Errorf("enhanced query missing keyword %q: %q", kw, enhanced)
					}
				}
			},
		},
		{
			name:  "Skips_Present_Keywords",
			query: "what does a Resident Assistant do during a procedure",
			check: func(t *testing.T, enhanced string) {
				if strings.Count(strings.ToLower(enhanced), "resident assistant") != 1 {
					t.Errorf("keyword duplicated: %q", enhanced)
				}
				if strings.Count(strings.ToLower(enhanced), "procedure") != 1 {
					t.Errorf("keyword duplicated: %q", enhanced)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := EnhanceQuery(tt.query)
			if again := EnhanceQuery(tt.query); again != first {
				t.Fatalf("EnhanceQuery is not deterministic: %q vs %q", first, again)
			}
			tt.check(t, first)
		})
	}
}

func TestRerank_ScoreOrder(t *testing.T) {
	matches := []vectorDB.Match{
		{ChunkId: "low", DocId: "d1", Score: 0.50},
		{ChunkId: "high", DocId: "d2", Score: 0.90},
		{ChunkId: "mid", DocId: "d3", Score: 0.70},
	}

	out := Rerank("anything", matches, 0.02)

	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if out[i].ChunkId != id {
			t.Errorf("position %d got %s, want %s", i, out[i].ChunkId, id)
		}
	}
}

func TestRerank_TieBrokenByKeywordOverlap(t *testing.T) {
	matches := []vectorDB.Match{
		{ChunkId: "generic", DocId: "d1", Score: 0.80, Content: "General housing information for students."},
		{ChunkId: "relevant", DocId: "d2", Score: 0.79, Content: "Fire alarm evacuation procedure for every resident."},
	}

	out := Rerank("fire alarm evacuation", matches, 0.02)

	if out[0].ChunkId != "relevant" {
		t.Errorf("tie should go to the chunk sharing query keywords, got %s first", out[0].ChunkId)
	}
}

func TestRerank_TiePrefersDocDiversity(t *testing.T) {
	matches := []vectorDB.Match{
		{ChunkId: "a1", DocId: "docA", Score: 0.90, Content: "same words here"},
		{ChunkId: "a2", DocId: "docA", Score: 0.89, Content: "same words here"},
		{ChunkId: "b1", DocId: "docB", Score: 0.89, Content: "same words here"},
	}

	out := Rerank("unrelated query", matches, 0.02)

	if out[0].ChunkId != "a1" {
		t.Fatalf("highest score should stay first, got %s", out[0].ChunkId)
	}
	if out[1].DocId != "docB" {
		t.Errorf("second pick should come from an unseen document, got %s from %s", out[1].ChunkId, out[1].DocId)
	}
}

func TestRerank_Deterministic(t *testing.T) {
	matches := []vectorDB.Match{
		{ChunkId: "c1", DocId: "d1", Score: 0.80, Content: "alpha beta", IngestedAt: 100},
		{ChunkId: "c2", DocId: "d2", Score: 0.80, Content: "alpha beta", IngestedAt: 100},
		{ChunkId: "c3", DocId: "d3", Score: 0.80, Content: "alpha beta", IngestedAt: 100},
	}

	first := Rerank("query", matches, 0.02)
	for i := 0; i < 5; i++ {
		again := Rerank("query", matches, 0.02)
		for j := range first {
			if first[j].ChunkId != again[j].ChunkId {
				t.Fatalf("run %d differs at %d: %s vs %s", i, j, again[j].ChunkId, first[j].ChunkId)
			}
		}
	}
	// Full ties keep insertion order.
	for i, id := range []string{"c1", "c2", "c3"} {
		if first[i].ChunkId != id {
			t.Errorf("position %d got %s, want %s", i, first[i].ChunkId, id)
		}
	}
}

func TestFormatContext(t *testing.T) {
	matches := []vectorDB.Match{
		{DocTitle: "Fire Safety", Page: 2, Content: " Evacuate calmly. "},
		{DocTitle: "Duty Manual", Page: 7, Content: "Log every incident."},
	}

	got := FormatContext(matches)

	if !strings.Contains(got, "[Source 1]\nDocument: Fire Safety\nPage: 2\nContent: Evacuate calmly.") {
		t.Errorf("first source block malformed:\n%s", got)
	}
	if !strings.Contains(got, "[Source 2]\nDocument: Duty Manual\nPage: 7") {
		t.Errorf("second source block malformed:\n%s", got)
	}
	if !strings.Contains(got, "\n\n") {
		t.Errorf("source blocks should be blank-line separated:\n%s", got)
	}
}

func TestFormatContext_Empty(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Errorf("empty matches should yield an empty context, got %q", got)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("What is the Fire-Drill procedure, and when?")

	for _, want := range []string{"fire-drill", "procedure"} {
		if !tokens[want] {
			t.Errorf("expected token %q in %v", want, tokens)
		}
	}
	for _, stop := range []string{"what", "is", "the", "and", "when"} {
		if tokens[stop] {
			t.Errorf("stopword %q should be dropped", stop)
		}
	}
}
