package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

var pdfSignature = []byte("%PDF-")

const (
	DefaultMaxBytes = 10 * 1024 * 1024
	DefaultMaxPages = 50
)

type Limits struct {
	MaxBytes int
	MaxPages int
}

// Validator runs the cheap pre-extraction checks: the five-byte signature,
// the size limit, and the page-count limit. All of it happens before any
// expensive extraction work.
type Validator struct {
	limits Limits
	conf   *model.Configuration
}

func New(limits Limits) *Validator {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = DefaultMaxBytes
	}
	if limits.MaxPages <= 0 {
		limits.MaxPages = DefaultMaxPages
	}
	conf := model.NewDefaultConfiguration()
	// Scanned exam papers are frequently produced by sloppy generators.
	conf.ValidationMode = model.ValidationRelaxed
	return &Validator{limits: limits, conf: conf}
}

func (v *Validator) CheckSignature(data []byte) error {
	if len(data) < len(pdfSignature) || !bytes.Equal(data[:len(pdfSignature)], pdfSignature) {
		return domain.WrapError(domain.ErrInvalidInput, "validate pdf",
			errors.New("file is not a valid PDF"))
	}
	return nil
}

// CheckLimits enforces the size and page limits and reports the page count.
func (v *Validator) CheckLimits(data []byte) (int, error) {
	if len(data) > v.limits.MaxBytes {
		return 0, domain.WrapError(domain.ErrInvalidInput, "validate pdf",
			fmt.Errorf("PDF is %.1f MB; the limit is %d MB",
				float64(len(data))/(1024*1024), v.limits.MaxBytes/(1024*1024)))
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), v.conf)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "validate pdf",
			fmt.Errorf("could not read page count: %w", err))
	}
	if pageCount > v.limits.MaxPages {
		return 0, domain.WrapError(domain.ErrInvalidInput, "validate pdf",
			fmt.Errorf("PDF has %d pages; the limit is %d", pageCount, v.limits.MaxPages))
	}
	return pageCount, nil
}
