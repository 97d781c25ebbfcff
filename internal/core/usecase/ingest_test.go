package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/ports"
)

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishPaperUploaded(_ context.Context, paperID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, paperID)
	return nil
}

func (f *fakeQueue) SubscribePaperUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadHappyPath(t *testing.T) {
	repo := &fakePaperRepo{}
	storage := &fakeStorage{}
	queue := &fakeQueue{}
	uc := NewIngestPaperUseCase(repo, storage, queue, &fakeValidator{pageCount: 8}, 1024)

	paper, err := uc.Upload(context.Background(), ports.UploadRequest{
		Filename:    "ACS Prelim 2023.pdf",
		Source:      "acs",
		Year:        2023,
		DefaultTier: 3,
		Body:        bytes.NewReader([]byte("%PDF-1.4 content")),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if paper.Status != domain.StatusUploaded {
		t.Fatalf("status = %s", paper.Status)
	}
	if paper.PageCount != 8 {
		t.Fatalf("page count = %d", paper.PageCount)
	}
	if !strings.HasSuffix(paper.StoragePath, "ACS_Prelim_2023.pdf") {
		t.Fatalf("storage key not sanitized: %q", paper.StoragePath)
	}
	if _, ok := storage.files[paper.StoragePath]; !ok {
		t.Fatalf("original bytes not stored")
	}
	if len(queue.published) != 1 || queue.published[0] != paper.ID {
		t.Fatalf("upload event not published: %v", queue.published)
	}
	if _, ok := repo.papers[paper.ID]; !ok {
		t.Fatalf("paper record not created")
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	uc := NewIngestPaperUseCase(&fakePaperRepo{}, &fakeStorage{}, &fakeQueue{}, &fakeValidator{}, 16)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{
		Filename: "big.pdf",
		Body:     bytes.NewReader(bytes.Repeat([]byte("a"), 17)),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRejectsEmptyBody(t *testing.T) {
	uc := NewIngestPaperUseCase(&fakePaperRepo{}, &fakeStorage{}, &fakeQueue{}, &fakeValidator{}, 1024)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{
		Filename: "empty.pdf",
		Body:     bytes.NewReader(nil),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRejectsBadSignature(t *testing.T) {
	sigErr := domain.WrapError(domain.ErrInvalidInput, "validate pdf", errors.New("file is not a valid PDF"))
	storage := &fakeStorage{}
	uc := NewIngestPaperUseCase(&fakePaperRepo{}, storage, &fakeQueue{}, &fakeValidator{signatureErr: sigErr}, 1024)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{
		Filename: "fake.pdf",
		Body:     bytes.NewReader([]byte("<!DOCTYPE html>")),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(storage.files) != 0 {
		t.Fatalf("invalid upload must not be stored")
	}
}

func TestUploadRejectsOutOfRangeTierHint(t *testing.T) {
	uc := NewIngestPaperUseCase(&fakePaperRepo{}, &fakeStorage{}, &fakeQueue{}, &fakeValidator{}, 1024)

	_, err := uc.Upload(context.Background(), ports.UploadRequest{
		Filename:    "p.pdf",
		DefaultTier: 9,
		Body:        bytes.NewReader([]byte("%PDF-1.4")),
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ACS Prelim 2023.pdf", "ACS_Prelim_2023.pdf"},
		{"../../etc/passwd", "passwd"},
		{"weird(chars)!.pdf", "weird_chars__.pdf"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
