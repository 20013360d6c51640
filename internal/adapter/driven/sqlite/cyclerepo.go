package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CycleStore = (*CycleRepo)(nil)

// CycleRepo is the SQLite implementation of the CycleStore port interface.
type CycleRepo struct {
	db *DB
}

// NewCycleRepo creates a new CycleRepo backed by the given DB.
func NewCycleRepo(db *DB) *CycleRepo {
	return &CycleRepo{db: db}
}

// Insert records a completed review cycle and returns its ID.
func (r *CycleRepo) Insert(ctx context.Context, cycle model.ReviewCycle) (int64, error) {
	const query = `INSERT INTO review_cycles
		(repo_full_name, pr_number, outcome, summary, comments_posted, comments_dropped, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := cycle.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		cycle.RepoFullName, cycle.PRNumber, string(cycle.Outcome), cycle.Summary,
		cycle.CommentsPosted, cycle.CommentsDropped, cycle.Error, createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert review cycle for %s#%d: %w", cycle.RepoFullName, cycle.PRNumber, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted cycle id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a single review cycle. Returns nil, nil if no cycle with
// that ID exists.
func (r *CycleRepo) GetByID(ctx context.Context, id int64) (*model.ReviewCycle, error) {
	const query = `SELECT id, repo_full_name, pr_number, outcome, summary,
		comments_posted, comments_dropped, error, created_at
		FROM review_cycles WHERE id = ?`

	cycle, err := scanCycle(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review cycle %d: %w", id, err)
	}

	return cycle, nil
}

// ListRecent returns the most recent review cycles, newest first.
func (r *CycleRepo) ListRecent(ctx context.Context, limit int) ([]model.ReviewCycle, error) {
	const query = `SELECT id, repo_full_name, pr_number, outcome, summary,
		comments_posted, comments_dropped, error, created_at
		FROM review_cycles ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list review cycles: %w", err)
	}
	defer rows.Close()

	var cycles []model.ReviewCycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review cycle: %w", err)
		}
		cycles = append(cycles, *cycle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review cycles: %w", err)
	}

	return cycles, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(s scanner) (*model.ReviewCycle, error) {
	var cycle model.ReviewCycle
	var outcome string
	var createdAt string

	err := s.Scan(&cycle.ID, &cycle.RepoFullName, &cycle.PRNumber, &outcome,
		&cycle.Summary, &cycle.CommentsPosted, &cycle.CommentsDropped,
		&cycle.Error, &createdAt)
	if err != nil {
		return nil, err
	}

	cycle.Outcome = model.Outcome(outcome)
	cycle.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &cycle, nil
}

// parseTime tries the datetime formats SQLite may hand back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
