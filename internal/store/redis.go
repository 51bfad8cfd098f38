package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sevigo/titleforge/internal/core"
)

// RedisStore persists job records in Redis under KeyPrefix-ed keys, each value
// holding the JSON encoding of the whole record. Records carry no TTL; job
// retention is an external concern.
type RedisStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisStore wraps an existing Redis client as a job store.
func NewRedisStore(client redis.UniversalClient, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*core.Job, error) {
	raw, err := s.client.Get(ctx, Key(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var job core.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *RedisStore) Set(ctx context.Context, job *core.Job) error {
	if job == nil || job.JobID == "" {
		return fmt.Errorf("job id cannot be empty")
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}
	return s.client.Set(ctx, Key(job.JobID), raw, 0).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]*core.Job, error) {
	var jobs []*core.Job

	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err != nil {
			s.logger.Warn("skipping unreadable job record", "key", key, "error", err)
			continue
		}

		var job core.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			s.logger.Warn("skipping undecodable job record", "key", key, "error", err)
			continue
		}
		jobs = append(jobs, &job)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return jobs, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
