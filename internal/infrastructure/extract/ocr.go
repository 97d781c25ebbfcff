package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

const DefaultOCRScale = 2.0

// OCRExtractor rasterizes each page with MuPDF and recognises it with
// Tesseract. Recognition failures on individual pages are skipped: any
// meaningful text improves downstream extraction, so partial text beats a
// hard failure.
type OCRExtractor struct {
	scale    float64
	language string
	logger   *slog.Logger
}

func NewOCR(scale float64, logger *slog.Logger) *OCRExtractor {
	if scale <= 0 {
		scale = DefaultOCRScale
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRExtractor{scale: scale, language: "eng", logger: logger}
}

func (e *OCRExtractor) Extract(ctx context.Context, data []byte) (*domain.ExtractionResult, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rasterization: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("configure ocr language: %w", err)
	}

	dpi := 72 * e.scale
	pageCount := doc.NumPage()
	pages := make([]string, pageCount)
	var confidenceSum float64
	confidencePages := 0

	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, confidence, err := e.recognisePage(doc, client, i, dpi)
		if err != nil {
			e.logger.Warn("ocr page skipped", "page", i+1, "error", err)
			continue
		}
		pages[i] = text
		if confidence >= 0 {
			confidenceSum += confidence
			confidencePages++
		}
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if text == "" {
		return nil, errors.New("ocr recognised no text on any page")
	}

	var docConfidence *float64
	if confidencePages > 0 {
		avg := confidenceSum / float64(confidencePages)
		docConfidence = &avg
	}

	return &domain.ExtractionResult{
		Text:          text,
		PageCount:     pageCount,
		Pages:         pages,
		Meaningful:    true,
		UsedOCR:       true,
		OCRConfidence: docConfidence,
	}, nil
}

// recognisePage renders one page and runs recognition on it. The returned
// confidence is -1 when Tesseract reported no line-level scores.
func (e *OCRExtractor) recognisePage(doc *fitz.Document, client *gosseract.Client, page int, dpi float64) (string, float64, error) {
	png, err := doc.ImagePNG(page, dpi)
	if err != nil {
		return "", -1, fmt.Errorf("rasterize: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", -1, fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", -1, fmt.Errorf("recognise: %w", err)
	}

	confidence := -1.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE); err == nil && len(boxes) > 0 {
		var sum float64
		for _, box := range boxes {
			sum += box.Confidence
		}
		confidence = sum / float64(len(boxes))
	}
	return strings.TrimSpace(text), confidence, nil
}
