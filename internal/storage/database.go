// Package storage persists completed review records.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/smart-review/smart-review/internal/core"
)

// ErrNoReview is returned when a pull request has no stored review yet.
var ErrNoReview = errors.New("no review found")

// Store defines the interface for all database operations.
type Store interface {
	SaveReview(ctx context.Context, record *core.ReviewRecord) error
	GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store backed by Postgres.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveReview inserts a completed review record.
func (s *postgresStore) SaveReview(ctx context.Context, record *core.ReviewRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO reviews (repo_full_name, pr_number, head_sha, state, summary, rounds, created_at)
		VALUES (:repo_full_name, :pr_number, :head_sha, :state, :summary, :rounds, :created_at)`
	_, err := s.db.NamedExecContext(ctx, query, record)
	return err
}

// GetLatestReviewForPR retrieves the most recent review for a pull request.
func (s *postgresStore) GetLatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.ReviewRecord, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, state, summary, rounds, created_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var record core.ReviewRecord
	if err := s.db.GetContext(ctx, &record, query, repoFullName, prNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReview
		}
		return nil, err
	}
	return &record, nil
}
