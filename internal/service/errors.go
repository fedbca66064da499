package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// storageErr wraps adapter failures in ErrStorageUnavailable. Workflow
// sentinels and context cancellation pass through unchanged.
func storageErr(err error) error {
	if err == nil || domain.IsWorkflowError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// notFoundAs replaces a repository not-found error with target.
func notFoundAs(err error, target error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", target, fmt.Sprintf(format, args...))
	}
	return err
}
