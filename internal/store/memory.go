package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/titleforge/internal/core"
)

// MemoryStore is the in-process backend used by default and in tests. Records
// are held as their JSON encoding so reads return detached copies: a caller
// mutating a returned record never changes the stored bytes, and re-reading a
// record without pipeline activity yields byte-identical data.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	logger *slog.Logger
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string][]byte),
		logger: logger,
	}
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*core.Job, error) {
	s.mu.RLock()
	raw, ok := s.data[Key(jobID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var job core.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *MemoryStore) Set(_ context.Context, job *core.Job) error {
	if job == nil || job.JobID == "" {
		return fmt.Errorf("job id cannot be empty")
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}

	s.mu.Lock()
	s.data[Key(job.JobID)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*core.Job, 0, len(s.data))
	for key, raw := range s.data {
		var job core.Job
		if err := json.Unmarshal(raw, &job); err != nil {
			s.logger.Warn("skipping unreadable job record", "key", key, "error", err)
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (s *MemoryStore) Close() error { return nil }
