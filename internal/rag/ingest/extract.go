package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/ramate-ai/ramate/internal/domain"
)

type rawPage struct {
	Number  int
	Content string
}

func docTypeFor(path string) domain.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return domain.DOCX
	default:
		return domain.ERR
	}
}

func extractText(path string, contentType domain.DocType) ([]rawPage, error) {
	switch contentType {
	case domain.PDF:
		return extractPDF(path)
	case domain.DOCX:
		return extractFlatFile(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// A single bad page is not fatal to the document.
			logger.Warn("skipping unparseable page", "path", path, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		pages = append(pages, rawPage{Number: i, Content: content})
	}
	return pages, nil
}

// extractFlatFile reads a .odt, .docx, .rtf or plaintext file. These
// formats carry no page structure, so everything lands on page 1.
func extractFlatFile(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

// protectExtract guards against pdf pages whose content stream hangs the
// parser. The extraction runs in its own goroutine with a hard deadline.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
