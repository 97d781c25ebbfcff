package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

type fakeIngestor struct {
	req  ports.UploadRequest
	body []byte
	err  error
}

func (f *fakeIngestor) Upload(_ context.Context, req ports.UploadRequest) (*domain.ExamPaper, error) {
	f.req = req
	f.body, _ = io.ReadAll(req.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ExamPaper{ID: "paper1", Filename: req.Filename, Status: domain.StatusUploaded}, nil
}

type fakeReader struct {
	papers map[string]*domain.ExamPaper
}

func (f *fakeReader) GetByID(_ context.Context, id string) (*domain.ExamPaper, error) {
	paper, ok := f.papers[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrPaperNotFound, "get exam paper", fmt.Errorf("id %s", id))
	}
	return paper, nil
}

func multipartUpload(t *testing.T, fields map[string]string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "acs_2023.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadPaperAccepted(t *testing.T) {
	ingestor := &fakeIngestor{}
	handler := NewRouter(ingestor, &fakeReader{}, nil).Handler()

	body, contentType := multipartUpload(t, map[string]string{
		"source": "acs",
		"year":   "2023",
		"tier":   "3",
	}, []byte("%PDF-1.4 data"))

	req := httptest.NewRequest(http.MethodPost, "/v1/papers", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ingestor.req.Filename != "acs_2023.pdf" {
		t.Fatalf("filename = %q", ingestor.req.Filename)
	}
	if ingestor.req.Source != "acs" || ingestor.req.Year != 2023 || ingestor.req.DefaultTier != 3 {
		t.Fatalf("metadata lost: %+v", ingestor.req)
	}

	if string(ingestor.body) != "%PDF-1.4 data" {
		t.Fatalf("body lost: %q", ingestor.body)
	}
}

func TestUploadPaperInvalidInputIs400(t *testing.T) {
	ingestor := &fakeIngestor{
		err: domain.WrapError(domain.ErrInvalidInput, "validate pdf", errors.New("file is not a valid PDF")),
	}
	handler := NewRouter(ingestor, &fakeReader{}, nil).Handler()

	body, contentType := multipartUpload(t, nil, []byte("<!DOCTYPE html>"))
	req := httptest.NewRequest(http.MethodPost, "/v1/papers", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadPaperMissingFile(t *testing.T) {
	handler := NewRouter(&fakeIngestor{}, &fakeReader{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/papers", bytes.NewBufferString("no file"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetPaperByID(t *testing.T) {
	papers := &fakeReader{papers: map[string]*domain.ExamPaper{
		"paper1": {ID: "paper1", Filename: "p.pdf", Status: domain.StatusReadyForReview, QuestionCount: 12},
	}}
	handler := NewRouter(&fakeIngestor{}, papers, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/papers/paper1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.ExamPaper
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "paper1" || got.QuestionCount != 12 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetPaperStatus(t *testing.T) {
	papers := &fakeReader{papers: map[string]*domain.ExamPaper{
		"paper1": {ID: "paper1", Status: domain.StatusFailed, Error: "ocr recognised no text"},
	}}
	handler := NewRouter(&fakeIngestor{}, papers, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/papers/paper1/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Status        string `json:"status"`
		QuestionCount int    `json:"questionCount"`
		Error         string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != string(domain.StatusFailed) || got.Error == "" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetPaperNotFound(t *testing.T) {
	handler := NewRouter(&fakeIngestor{}, &fakeReader{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/papers/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&fakeIngestor{}, &fakeReader{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}
