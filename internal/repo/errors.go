package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("already exists")
)

// pq error codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapErr translates driver errors into the package sentinels. Other errors pass through.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrConflict
		case foreignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// lockProjectOwner returns the owner of projectID, holding a share lock on the
// project row until tx ends so it cannot be deleted or reassigned mid-write.
func lockProjectOwner(ctx context.Context, tx *sql.Tx, projectID int) (int, error) {
	var ownerID int
	err := tx.QueryRowContext(ctx, `SELECT owner_id FROM projects WHERE id = $1 FOR SHARE`, projectID).Scan(&ownerID)
	return ownerID, mapErr(err)
}

// statsRecentLimit is the number of recent additions returned by Statistics.
const statsRecentLimit = 5
