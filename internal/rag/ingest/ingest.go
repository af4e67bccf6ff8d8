// Package ingest turns a corpus directory into cleaned, overlapping
// chunks with page and source metadata. Embeddings happen downstream.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ramate-ai/ramate/internal/domain"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

type Processor struct {
	ChunkSize    int
	ChunkOverlap int
}

// Result is everything one corpus pass produced. Failures hold the
// documents that could not be read; the rest of the corpus is unaffected.
type Result struct {
	Chunks    []domain.DocChunk
	Documents []domain.Document
	Failures  []domain.DocFailure
}

// Process walks corpusPath and extracts, cleans and chunks every
// supported document. It only fails outright when the directory itself
// is unreadable; per-document errors are recorded and skipped.
func (p Processor) Process(corpusPath string) (Result, error) {
	entries, err := os.ReadDir(corpusPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading corpus directory: %w", err)
	}

	var res Result
	ingestedAt := time.Now()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(corpusPath, entry.Name())

		contentType := docTypeFor(path)
		if contentType == domain.ERR {
			continue
		}

		doc := domain.Document{
			Id:          uuid.New().String(),
			Title:       formatTitle(entry.Name()),
			SourceFile:  entry.Name(),
			Link:        documentLink(corpusPath, entry.Name()),
			IngestedAt:  ingestedAt,
			ContentType: contentType,
		}

		pages, err := extractText(path, contentType)
		if err != nil {
			logger.Error("document unreadable, skipping", "path", path, "error", err)
			res.Failures = append(res.Failures, domain.DocFailure{Path: path, Reason: err.Error()})
			continue
		}
		doc.PageCount = len(pages)

		chunks := p.chunkPages(pages, doc)
		if len(chunks) == 0 {
			logger.Warn("document produced no chunks", "path", path)
			continue
		}

		res.Documents = append(res.Documents, doc)
		res.Chunks = append(res.Chunks, chunks...)
		logger.Debug("processed document", "file", entry.Name(), "pages", len(pages), "chunks", len(chunks))
	}

	logger.Info("corpus processed", "documents", len(res.Documents), "chunks", len(res.Chunks), "failures", len(res.Failures))
	return res, nil
}

// chunkPages cleans and chunks each page, numbering chunks sequentially
// across the whole document.
func (p Processor) chunkPages(pages []rawPage, doc domain.Document) []domain.DocChunk {
	var all []domain.DocChunk
	chunkIndex := 0

	for _, page := range pages {
		cleaned := CleanText(page.Content)
		if cleaned == "" {
			continue
		}

		for _, text := range chunkSentences(splitSentences(cleaned), p.ChunkSize, p.ChunkOverlap) {
			all = append(all, domain.DocChunk{
				Doc:        doc,
				ChunkId:    uuid.New().String(),
				Text:       text,
				PageNum:    page.Number,
				ChunkIndex: chunkIndex,
				CreatedAt:  doc.IngestedAt,
			})
			chunkIndex++
		}
	}
	return all
}

var titleSeparators = regexp.MustCompile(`[_\-.]+`)

// formatTitle turns "ra_duty-manual.pdf" into "Ra Duty Manual".
func formatTitle(filename string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	title = titleSeparators.ReplaceAllString(title, " ")
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func documentLink(dir, filename string) string {
	abs, err := filepath.Abs(filepath.Join(dir, filename))
	if err != nil {
		abs = filepath.Join(dir, filename)
	}
	return "file://" + abs
}
