// Package extract implements the two text extraction paths: native PDF text
// and the OCR fallback for image-only scans. Both produce the same
// ExtractionResult shape so the pipeline does not care which one ran.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

const DefaultMinMeaningfulChars = 100

// NativeExtractor pulls embedded text out of a digital PDF.
type NativeExtractor struct {
	minMeaningful int
}

func NewNative(minMeaningfulChars int) *NativeExtractor {
	if minMeaningfulChars <= 0 {
		minMeaningfulChars = DefaultMinMeaningfulChars
	}
	return &NativeExtractor{minMeaningful: minMeaningfulChars}
}

// Extract reads text page by page. Some PDFs defeat the per-page reader, so
// it falls back to the whole-document text stream and re-derives page
// boundaries heuristically. The underlying library panics on certain
// malformed files; that is converted into an ordinary extraction error.
func (e *NativeExtractor) Extract(_ context.Context, data []byte) (result *domain.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pageCount := reader.NumPage()
	pages, ok := e.extractPerPage(reader, pageCount)
	if !ok {
		pages, err = e.extractWholeDocument(reader, pageCount)
		if err != nil {
			return nil, err
		}
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	return &domain.ExtractionResult{
		Text:       text,
		PageCount:  pageCount,
		Pages:      pages,
		Meaningful: meaningfulLength(text) > e.minMeaningful,
	}, nil
}

func (e *NativeExtractor) extractPerPage(reader *pdf.Reader, pageCount int) ([]string, bool) {
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, false
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, true
}

func (e *NativeExtractor) extractWholeDocument(reader *pdf.Reader, pageCount int) ([]string, error) {
	stream, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, fmt.Errorf("read pdf text stream: %w", err)
	}
	return splitIntoPages(buf.String(), pageCount), nil
}
