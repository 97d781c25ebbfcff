package domain

import "time"

type PaperStatus string

const (
	StatusUploaded       PaperStatus = "uploaded"
	StatusProcessing     PaperStatus = "processing"
	StatusReadyForReview PaperStatus = "ready_for_review"
	StatusFailed         PaperStatus = "failed"
)

// ExamPaper is one uploaded exam paper tracked from upload through staging.
type ExamPaper struct {
	ID            string      `json:"id"`
	Filename      string      `json:"filename"`
	StoragePath   string      `json:"storage_path"`
	Source        string      `json:"source,omitempty"`
	Year          int         `json:"year,omitempty"`
	DefaultTier   int         `json:"default_tier,omitempty"`
	Status        PaperStatus `json:"status"`
	PageCount     int         `json:"page_count,omitempty"`
	UsedOCR       bool        `json:"used_ocr"`
	OCRConfidence *float64    `json:"ocr_confidence,omitempty"`
	QuestionCount int         `json:"question_count"`
	Error         string      `json:"error,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// PaperMeta carries the hints a paper's metadata contributes to extraction
// prompts. Year and DefaultTier are zero when unknown.
type PaperMeta struct {
	Filename    string
	Source      string
	Year        int
	DefaultTier int
}

// ExtractionResult is the per-document output of the text extraction stage.
// Both the native and the OCR path produce this shape, so downstream stages
// are extractor-agnostic.
type ExtractionResult struct {
	Text          string
	PageCount     int
	Pages         []string
	Meaningful    bool
	UsedOCR       bool
	OCRConfidence *float64 // 0-100, OCR path only
}

// ExtractionSummary is the slice of pipeline output persisted back onto the
// paper record once processing finishes.
type ExtractionSummary struct {
	PageCount     int
	UsedOCR       bool
	OCRConfidence *float64
	QuestionCount int
}

// Chunk is one bounded text segment sent to the extraction service. Index and
// Total give the service ordinal context when a paper spans several chunks.
type Chunk struct {
	Text  string
	Index int
	Total int
}
