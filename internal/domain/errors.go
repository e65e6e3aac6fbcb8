// Package domain implements build target discovery: directory walking,
// workspace resolution, rule extraction, aggregation and classification.
package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrScanCancelled is returned when the caller's context fires before a
	// scan completes. No partial result accompanies it.
	ErrScanCancelled = errors.New("scan cancelled")

	// ErrInvalidRoot is returned when the scan root does not exist or is not
	// a directory.
	ErrInvalidRoot = errors.New("invalid scan root")
)

// cancelled wraps the context error so callers can match either the
// cancellation kind or the underlying context error.
func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrScanCancelled, context.Cause(ctx))
}
