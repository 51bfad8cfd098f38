package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/stages"
	"github.com/sevigo/titleforge/internal/store"
)

// JobsHandler serves the read-only job listing endpoints.
type JobsHandler struct {
	query  *stages.Query
	logger *slog.Logger
}

// NewJobsHandler creates the jobs query handler.
func NewJobsHandler(query *stages.Query, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{query: query, logger: logger}
}

type jobsResponse struct {
	Jobs []*core.Job `json:"jobs"`
}

// Handle processes GET /jobs and returns every job, newest first.
func (h *JobsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.query.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list jobs"})
		return
	}

	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs})
}

// HandleOne processes GET /jobs/{jobID}.
func (h *JobsHandler) HandleOne(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.query.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
			return
		}
		h.logger.Error("failed to read job", "job_id", jobID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read job"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}
