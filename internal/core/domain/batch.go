package domain

import "time"

// BatchFailure records one file that completed with a terminal error.
type BatchFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchProgress is the durable checkpoint for a batch run. It is read once at
// startup and rewritten wholesale after each completed group, so a crash
// loses at most the in-flight group's partial work.
type BatchProgress struct {
	ProcessedFiles []string       `json:"processedFiles"`
	FailedFiles    []BatchFailure `json:"failedFiles"`
	TotalQuestions int            `json:"totalQuestions"`
	StartedAt      time.Time      `json:"startedAt"`
	LastUpdated    time.Time      `json:"lastUpdated"`
}

func NewBatchProgress(now time.Time) *BatchProgress {
	return &BatchProgress{
		ProcessedFiles: []string{},
		FailedFiles:    []BatchFailure{},
		StartedAt:      now,
		LastUpdated:    now,
	}
}

// ProcessedSet indexes the processed filenames for pending-set computation.
func (p *BatchProgress) ProcessedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.ProcessedFiles))
	for _, f := range p.ProcessedFiles {
		set[f] = struct{}{}
	}
	return set
}

// MarkProcessed records a successfully completed file and its question yield.
func (p *BatchProgress) MarkProcessed(file string, questions int, now time.Time) {
	p.ProcessedFiles = append(p.ProcessedFiles, file)
	p.TotalQuestions += questions
	p.LastUpdated = now
}

// MarkFailed records a terminal failure. The file counts as processed so the
// next run does not retry it; the failure list keeps the reason.
func (p *BatchProgress) MarkFailed(file, message string, now time.Time) {
	p.ProcessedFiles = append(p.ProcessedFiles, file)
	p.FailedFiles = append(p.FailedFiles, BatchFailure{File: file, Error: message})
	p.LastUpdated = now
}
