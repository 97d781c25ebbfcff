// Package ollama talks to a local Ollama server to turn chunks of exam
// paper text into structured question candidates.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(baseURL, model string, requestsPerSecond float64, executor *resilience.Executor) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		executor:   executor,
	}
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama_generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

// Extractor implements structured question extraction over the raw client.
type Extractor struct {
	client          *Client
	taxonomy        []domain.Topic
	reviewThreshold float64
}

func NewExtractor(client *Client, taxonomy []domain.Topic, reviewThreshold float64) *Extractor {
	if len(taxonomy) == 0 {
		taxonomy = domain.DefaultTaxonomy()
	}
	if reviewThreshold <= 0 || reviewThreshold > 1 {
		reviewThreshold = domain.DefaultReviewThreshold
	}
	return &Extractor{client: client, taxonomy: taxonomy, reviewThreshold: reviewThreshold}
}

// ExtractQuestions sends one chunk to the model and returns sanitized
// candidates. An empty questions array is a valid answer, not an error: a
// chunk can hold nothing but instructions or a formula sheet.
func (e *Extractor) ExtractQuestions(ctx context.Context, chunk domain.Chunk, meta domain.PaperMeta) (domain.ChunkExtraction, error) {
	raw, err := e.client.generateJSON(ctx, buildExtractionPrompt(chunk, meta, e.taxonomy))
	if err != nil {
		return domain.ChunkExtraction{}, err
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return domain.ChunkExtraction{}, fmt.Errorf("parse extraction response: %w", err)
	}

	extraction := domain.ChunkExtraction{
		Questions:  make([]domain.CandidateQuestion, 0, len(payload.Questions)),
		PaperType:  strings.TrimSpace(payload.PaperType),
		GradeLevel: strings.TrimSpace(payload.GradeLevel),
	}
	for _, q := range payload.Questions {
		extraction.Questions = append(extraction.Questions, e.sanitize(q, meta))
	}
	return extraction, nil
}
