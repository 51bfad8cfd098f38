package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/db"
)

// PostgresStore persists job records in a single jobs table: the persistence
// key as primary key, the whole record as JSONB. It keeps the same
// overwrite-by-key semantics as the other backends.
type PostgresStore struct {
	db     *db.DB
	logger *slog.Logger
}

// NewPostgresStore wraps a migrated database handle as a job store.
func NewPostgresStore(database *db.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     database,
		logger: logger,
	}
}

func (s *PostgresStore) Get(ctx context.Context, jobID string) (*core.Job, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM jobs WHERE key = $1`, Key(jobID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}

	var job core.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *PostgresStore) Set(ctx context.Context, job *core.Job) error {
	if job == nil || job.JobID == "" {
		return fmt.Errorf("job id cannot be empty")
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}

	query := `
		INSERT INTO jobs (key, record, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, query, Key(job.JobID), raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*core.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, record FROM jobs WHERE key LIKE $1`, KeyPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("select jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*core.Job
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			s.logger.Warn("skipping unreadable job row", "error", err)
			continue
		}

		var job core.Job
		if err := json.Unmarshal(raw, &job); err != nil {
			s.logger.Warn("skipping undecodable job record", "key", key, "error", err)
			continue
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	return jobs, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
