package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/resilience"
	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
)

// ErrNotFound is returned when no assessment has the requested id
var ErrNotFound = errors.New("assessment not found")

// DefaultListLimit caps ListRecent when the caller passes a non-positive limit
const DefaultListLimit = 20

// Repository handles assessment persistence
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*types.Assessment, error) {
	var a types.Assessment
	var prediction string
	err := row.Scan(
		&a.ID, &a.Subject,
		&a.Totals.CE, &a.Totals.RO, &a.Totals.AC, &a.Totals.AE,
		&a.Axes.ACMinusCE, &a.Axes.AEMinusRO,
		&a.Noise, &prediction, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Prediction = types.Label(prediction)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// IsBusy reports whether err is sqlite lock contention that may clear on retry
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// SaveAssessment stores a completed assessment, retrying briefly while
// another writer holds the database lock
func (r *Repository) SaveAssessment(ctx context.Context, a *types.Assessment) error {
	stmt, err := r.db.GetPreparedStatement("insert_assessment")
	if err != nil {
		return err
	}

	policy := resilience.StoragePolicy
	policy.RetryableErrors = IsBusy

	err = resilience.RetryWithConfig(ctx, policy, func() error {
		_, err := stmt.ExecContext(ctx,
			a.ID, a.Subject,
			a.Totals.CE, a.Totals.RO, a.Totals.AC, a.Totals.AE,
			a.Axes.ACMinusCE, a.Axes.AEMinusRO,
			a.Noise, string(a.Prediction), a.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// GetAssessment loads one assessment by id, returning ErrNotFound if absent
func (r *Repository) GetAssessment(ctx context.Context, id string) (*types.Assessment, error) {
	stmt, err := r.db.GetPreparedStatement("get_assessment")
	if err != nil {
		return nil, err
	}

	a, err := scanAssessment(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return a, nil
}

// ListRecent returns the newest assessments first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]types.Assessment, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	stmt, err := r.db.GetPreparedStatement("list_recent")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	out := make([]types.Assessment, 0, limit)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

// CountByPrediction returns how many stored assessments carry each label
func (r *Repository) CountByPrediction(ctx context.Context) (map[types.Label]int, error) {
	stmt, err := r.db.GetPreparedStatement("count_by_prediction")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Label]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan prediction count: %w", err)
		}
		counts[types.Label(label)] = n
	}

	return counts, rows.Err()
}

// DeleteAssessment removes one assessment, returning ErrNotFound if absent
func (r *Repository) DeleteAssessment(ctx context.Context, id string) error {
	stmt, err := r.db.GetPreparedStatement("delete_assessment")
	if err != nil {
		return err
	}

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteOlderThan removes assessments created before cutoff and reports how many
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, err := r.db.GetPreparedStatement("delete_before")
	if err != nil {
		return 0, err
	}

	result, err := stmt.ExecContext(ctx, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge assessments: %w", err)
	}

	return result.RowsAffected()
}
