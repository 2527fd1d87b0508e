package service

import (
	"errors"

	"github.com/jwalitptl/ehr-api/internal/repository"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
)

// StorageError maps repository sentinels onto API errors. Callers that
// can attribute a foreign key failure to an input field should check
// IsForeignKey first and report a validation error instead.
func StorageError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(resource+" conflicts with an existing record", err)
	case errors.Is(err, repository.ErrForeignKey):
		return apperrors.Conflict(resource+" references a missing record", err)
	}
	return apperrors.Internal(err)
}

// IsForeignKey reports a foreign key violation from the store
func IsForeignKey(err error) bool {
	return errors.Is(err, repository.ErrForeignKey)
}

// IsDuplicate reports a unique key violation from the store
func IsDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
