package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/titleforge/internal/core"
)

func newTestStore() *MemoryStore {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewMemoryStore(logger)
}

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	job := &core.Job{
		JobID:     "job-1700000000000_abc1234",
		Channel:   "veritasium",
		Email:     "creator@example.com",
		Status:    core.StatusQueued,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.Set(ctx, job))

	got, err := s.Get(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, got.JobID)
	assert.Equal(t, core.StatusQueued, got.Status)
	assert.Equal(t, job.CreatedAt, got.CreatedAt)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := newTestStore()

	_, err := s.Get(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyJobID(t *testing.T) {
	s := newTestStore()

	assert.Error(t, s.Set(context.Background(), &core.Job{}))
	assert.Error(t, s.Set(context.Background(), nil))
}

func TestMemoryStoreReadsAreDetached(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	job := &core.Job{
		JobID:  "job-2",
		Status: core.StatusFetched,
		Videos: []core.Video{{VideoID: "v1", Title: "original"}},
	}
	require.NoError(t, s.Set(ctx, job))

	first, err := s.Get(ctx, "job-2")
	require.NoError(t, err)
	first.Videos[0].Title = "mutated"
	first.Status = core.StatusFailed

	second, err := s.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, "original", second.Videos[0].Title)
	assert.Equal(t, core.StatusFetched, second.Status)

	// Repeated reads without writes return byte-identical data.
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	third, err := s.Get(ctx, "job-2")
	require.NoError(t, err)
	c, _ := json.Marshal(third)
	assert.Equal(t, b, c)
	assert.NotEqual(t, a, b)
}

func TestMemoryStoreListEmpty(t *testing.T) {
	s := newTestStore()

	jobs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMemoryStoreListReturnsAll(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, &core.Job{JobID: id, Status: core.StatusQueued}))
	}

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}
