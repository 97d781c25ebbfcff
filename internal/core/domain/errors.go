package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks signature/limit violations. Never retried; the
	// caller must resubmit a corrected file.
	ErrInvalidInput  = errors.New("invalid input")
	ErrPaperNotFound = errors.New("paper not found")
	// ErrTemporary marks retryable service failures.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
