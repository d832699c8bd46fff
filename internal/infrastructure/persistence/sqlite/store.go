package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rostam/opsdesk/internal/application/auth"
	"github.com/rostam/opsdesk/internal/application/crm"
	"github.com/rostam/opsdesk/internal/application/leave"
	"github.com/rostam/opsdesk/internal/application/notify"
	"github.com/rostam/opsdesk/internal/application/task"
	"github.com/rostam/opsdesk/internal/application/trash"
)

// queryer is the query surface shared by the database and an open
// transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides the SQLite implementation of all repository interfaces.
// It mirrors the PostgreSQL store so deployments can switch backends with
// a config flag.
type Store struct {
	sqldb *sql.DB
	db    queryer
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ task.Repository     = (*Store)(nil)
	_ task.AccessPolicy   = (*Store)(nil)
	_ task.TeamMembership = (*Store)(nil)
	_ trash.Repository    = (*Store)(nil)
	_ leave.Repository    = (*Store)(nil)
	_ crm.Repository      = (*Store)(nil)
	_ auth.Repository     = (*Store)(nil)
	_ notify.Repository   = (*Store)(nil)
)

// NewStore creates a new SQLite store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{sqldb: db, db: db}
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.sqldb.Close()
}

// executeInTransaction runs fn on a transaction-scoped Store with panic
// recovery.
func (s *Store) executeInTransaction(ctx context.Context, operationName string, fn func(txStore *Store) error) (err error) {
	tx, err := s.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback after panic failed",
					"operation", operationName,
					"panic", p,
					"rollback_error", rbErr)
			}
			panic(p)
		}

		if err != nil {
			slog.ErrorContext(ctx, "transaction failed, rolling back",
				"operation", operationName,
				"error", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	txStore := &Store{sqldb: s.sqldb, db: tx}
	err = fn(txStore)
	return
}

// checkResult converts a zero-row write into notFoundErr.
func checkResult(res sql.Result, notFoundErr error, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", notFoundErr, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
