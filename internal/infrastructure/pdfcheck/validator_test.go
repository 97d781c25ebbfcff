package pdfcheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

func TestCheckSignature(t *testing.T) {
	v := New(Limits{})

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid header", []byte("%PDF-1.7\nrest of file"), false},
		{"html masquerading as pdf", []byte("<!DOCTYPE html>"), true},
		{"empty file", nil, true},
		{"truncated header", []byte("%PD"), true},
		{"signature not at start", []byte("\n%PDF-1.4"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckSignature(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSignature() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCheckLimitsRejectsOversizedFile(t *testing.T) {
	v := New(Limits{MaxBytes: 64, MaxPages: 50})

	data := bytes.Repeat([]byte("a"), 65)
	_, err := v.CheckLimits(data)
	if err == nil {
		t.Fatalf("expected size limit error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCheckLimitsRejectsUnreadablePDF(t *testing.T) {
	v := New(Limits{})

	// Valid signature but no xref structure: the page count is unreadable.
	_, err := v.CheckLimits([]byte("%PDF-1.7\ngarbage"))
	if err == nil {
		t.Fatalf("expected page count error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "page count") {
		t.Fatalf("expected page count message, got %v", err)
	}
}

func TestNewAppliesDefaultLimits(t *testing.T) {
	v := New(Limits{})
	if v.limits.MaxBytes != DefaultMaxBytes {
		t.Fatalf("MaxBytes = %d, want %d", v.limits.MaxBytes, DefaultMaxBytes)
	}
	if v.limits.MaxPages != DefaultMaxPages {
		t.Fatalf("MaxPages = %d, want %d", v.limits.MaxPages, DefaultMaxPages)
	}
}
