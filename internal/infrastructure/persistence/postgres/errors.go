package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rostam/opsdesk/internal/domain"
)

// PostgreSQL error codes we map to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapPgError translates driver-level failures into domain errors so the
// service layer never sees pgconn types.
func mapPgError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s already exists", domain.ErrInvalidState, entity)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing record", domain.ErrNotFound, entity)
		}
	}
	return err
}

// checkRowsAffected converts a zero-row write into notFoundErr.
func checkRowsAffected(rowsAffected int64, notFoundErr error, id string) error {
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", notFoundErr, id)
	}
	return nil
}
