package stages

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
)

// Query is the read side of the pipeline, backing the jobs listing API.
type Query struct {
	store  store.JobStore
	logger *slog.Logger
}

// NewQuery creates the job query service.
func NewQuery(jobStore store.JobStore, logger *slog.Logger) *Query {
	return &Query{store: jobStore, logger: logger}
}

// ListJobs returns every stored job, newest first.
func (q *Query) ListJobs(ctx context.Context) ([]*core.Job, error) {
	jobs, err := q.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// GetJob returns one job by id.
func (q *Query) GetJob(ctx context.Context, jobID string) (*core.Job, error) {
	job, err := q.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}
