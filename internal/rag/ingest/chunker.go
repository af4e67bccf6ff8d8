package ingest

import (
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*|\s*[^.!?]+$`)

// splitSentences breaks cleaned text into trimmed sentences. A trailing
// fragment without terminal punctuation still counts as a sentence.
func splitSentences(text string) []string {
	raw := sentencePattern.FindAllString(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// chunkSentences greedily packs sentences into chunks of at most limit
// characters. Each new chunk re-includes the trailing sentences of the
// previous one up to overlap characters, so consecutive chunks share a
// suffix/prefix. Boundaries never fall inside a sentence; the one
// documented exception is a single sentence longer than limit, which
// becomes its own chunk unmodified.
func chunkSentences(sentences []string, limit int, overlap int) []string {
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func(next string) {
		chunks = append(chunks, strings.Join(current, " "))

		tail, tailLen := overlapTail(current, overlap)
		// Drop the overlap if it would push the next chunk past the limit.
		if tailLen > 0 && tailLen+1+len(next) > limit {
			tail, tailLen = nil, 0
		}
		current = tail
		currentLen = tailLen
	}

	for _, sentence := range sentences {
		joined := len(sentence)
		if currentLen > 0 {
			joined++ // the joining space
		}
		if currentLen > 0 && currentLen+joined > limit {
			flush(sentence)
		}
		if currentLen > 0 {
			currentLen++
		}
		current = append(current, sentence)
		currentLen += len(sentence)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// overlapTail returns the longest run of trailing sentences whose joined
// length stays within overlap characters.
func overlapTail(sentences []string, overlap int) ([]string, int) {
	var tail []string
	tailLen := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		add := len(sentences[i])
		if tailLen > 0 {
			add++
		}
		if tailLen+add > overlap {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		tailLen += add
	}
	return tail, tailLen
}
