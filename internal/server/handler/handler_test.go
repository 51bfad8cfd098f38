package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/stages"
	"github.com/sevigo/titleforge/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type publisherFunc func() error

func (f publisherFunc) Publish(context.Context, string, any) error { return f() }

func TestSubmitAccepted(t *testing.T) {
	logger := testLogger()
	jobStore := store.NewMemoryStore(logger)
	submission := stages.NewSubmission(jobStore, publisherFunc(func() error { return nil }), logger)
	h := NewSubmitHandler(submission, logger)

	req := httptest.NewRequest(http.MethodPost, "/submit",
		strings.NewReader(`{"channel":"Tech Weekly","email":"creator@example.com"}`))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		JobID   string `json:"jobId"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.JobID, "job-"))
	assert.Contains(t, resp.Message, "queued")
}

func TestSubmitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not json at all`},
		{name: "missing email", body: `{"channel":"Tech Weekly"}`},
		{name: "invalid email", body: `{"channel":"Tech Weekly","email":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testLogger()
			jobStore := store.NewMemoryStore(logger)
			submission := stages.NewSubmission(jobStore, publisherFunc(func() error { return nil }), logger)
			h := NewSubmitHandler(submission, logger)

			req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Handle(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestJobsListing(t *testing.T) {
	logger := testLogger()
	jobStore := store.NewMemoryStore(logger)
	query := stages.NewQuery(jobStore, logger)
	h := NewJobsHandler(query, logger)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, jobStore.Set(t.Context(), &core.Job{
		JobID: "job-1_aaaa", Channel: "c1", Email: "a@b.co",
		Status: core.StatusCompleted, CreatedAt: base,
	}))
	require.NoError(t, jobStore.Set(t.Context(), &core.Job{
		JobID: "job-2_bbbb", Channel: "c2", Email: "a@b.co",
		Status: core.StatusQueued, CreatedAt: base.Add(time.Minute),
	}))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Jobs []core.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "job-2_bbbb", resp.Jobs[0].JobID)
	assert.Equal(t, "job-1_aaaa", resp.Jobs[1].JobID)
}

func TestJobByIDNotFound(t *testing.T) {
	logger := testLogger()
	jobStore := store.NewMemoryStore(logger)
	query := stages.NewQuery(jobStore, logger)
	h := NewJobsHandler(query, logger)

	r := chi.NewRouter()
	r.Get("/jobs/{jobID}", h.HandleOne)

	req := httptest.NewRequest(http.MethodGet, "/jobs/job-nope_ffff", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
