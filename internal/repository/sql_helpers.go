package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	livepoll_errors "livepoll/pkg/errors"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// classifyError maps driver errors onto the service error taxonomy. SQLSTATE
// detail stays server-side; callers only ever see sentinel errors.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return livepoll_errors.ErrNotFound
	}
	if isUniqueViolation(err) {
		return livepoll_errors.ErrDuplicateResponse
	}
	if isForeignKeyViolation(err) {
		return livepoll_errors.ErrNotFound
	}
	return fmt.Errorf("%w: %v", livepoll_errors.ErrStorageFailure, err)
}
