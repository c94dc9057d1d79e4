package persistence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/shared"
)

// translateError maps gorm errors onto domain errors.
// The connection must be opened with TranslateError so that unique
// violations surface as gorm.ErrDuplicatedKey.
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewDomainError(shared.ErrNotFound.Code, what+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, what+" already exists")
	}
	return fmt.Errorf("%s query failed: %w", what, err)
}

func conflictError(what string) error {
	return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, what+" was modified by another request")
}
