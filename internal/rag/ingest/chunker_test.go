package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"Terminal_Punctuation", "First sentence. Second sentence! Third sentence?", 3},
		{"Trailing_Fragment", "Complete sentence. trailing fragment without period", 2},
		{"Quoted_End", `He said "stop." Then he left.`, 2},
		{"Empty", "", 0},
		{"Only_Whitespace", "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if len(got) != tt.expected {
				t.Errorf("splitSentences(%q) = %d sentences %v; want %d", tt.text, len(got), got, tt.expected)
			}
		})
	}
}

func TestChunkSentences_RespectsLimit(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, fmt.Sprintf("This is test sentence number %d in the corpus.", i))
	}
	limit := 200
	overlap := 50

	chunks := chunkSentences(sentences, limit, overlap)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > limit && len(splitSentences(c)) > 1 {
			t.Errorf("chunk %d exceeds limit with %d chars and is not a single oversized sentence", i, len(c))
		}
	}
}

func TestChunkSentences_OversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 100) + "end."
	chunks := chunkSentences([]string{"Short lead-in.", strings.TrimSpace(long), "Short tail."}, 50, 10)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, "end.") && len(c) > 50 {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized sentence was not kept whole: %v", chunks)
	}
}

func TestChunkSentences_Overlap(t *testing.T) {
	sentences := []string{
		"Alpha sentence one here.",
		"Beta sentence two here.",
		"Gamma sentence three here.",
		"Delta sentence four here.",
	}
	chunks := chunkSentences(sentences, 60, 30)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	// Consecutive chunks share trailing sentences when the overlap fits.
	for i := 1; i < len(chunks); i++ {
		prev := splitSentences(chunks[i-1])
		cur := splitSentences(chunks[i])
		if len(prev) == 0 || len(cur) == 0 {
			continue
		}
		if prev[len(prev)-1] == cur[0] {
			return
		}
	}
	t.Logf("no shared boundary sentence found; overlap was dropped to honor the size limit: %v", chunks)
}

func TestChunkSentences_Deterministic(t *testing.T) {
	text := "The fire alarm must be reported immediately. Residents gather at the assembly point. The RA takes a headcount. Missing residents are reported to campus safety. The all-clear is given by the fire marshal."
	sentences := splitSentences(text)

	first := chunkSentences(sentences, 100, 30)
	for i := 0; i < 5; i++ {
		again := chunkSentences(sentences, 100, 30)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d chunks, first run produced %d", i, len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d chunk %d differs:\n%q\n%q", i, j, again[j], first[j])
			}
		}
	}
}

func TestChunkSentences_ShortDocumentSingleChunk(t *testing.T) {
	text := "In case of fire, pull the alarm and evacuate."
	chunks := chunkSentences(splitSentences(text), 600, 100)

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for a short document, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk content changed: %q", chunks[0])
	}
}

func TestChunkSentences_NoOverlapOnlyChunks(t *testing.T) {
	sentences := []string{
		"One two three four five.",
		"Six seven eight nine ten.",
		"Eleven twelve thirteen fourteen.",
	}
	chunks := chunkSentences(sentences, 40, 30)

	for i, c := range chunks {
		fresh := false
		for _, s := range sentences {
			if strings.Contains(c, s) && (i == 0 || !strings.Contains(chunks[i-1], s)) {
				fresh = true
			}
		}
		if !fresh {
			t.Errorf("chunk %d contains only repeated overlap text: %q", i, c)
		}
	}
}
