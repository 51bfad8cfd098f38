// Package handler provides the HTTP handlers of the title pipeline API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/stages"
)

// SubmitHandler accepts new pipeline requests.
type SubmitHandler struct {
	submission *stages.Submission
	logger     *slog.Logger
}

// NewSubmitHandler creates the submission endpoint handler.
func NewSubmitHandler(submission *stages.Submission, logger *slog.Logger) *SubmitHandler {
	return &SubmitHandler{submission: submission, logger: logger}
}

type submitRequest struct {
	Channel string `json:"channel"`
	Email   string `json:"email"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handle processes POST /submit. Validation failures are returned
// synchronously; everything after that is reported by email.
func (h *SubmitHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("rejecting unparseable submit body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	job, err := h.submission.Submit(r.Context(), req.Channel, req.Email)
	if err != nil {
		var stageErr *core.StageError
		if errors.As(err, &stageErr) && stageErr.Kind == core.KindValidation {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: stageErr.UserMessage})
			return
		}
		h.logger.Error("failed to accept submission", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to accept the request"})
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		Success: true,
		JobID:   job.JobID,
		Message: "your request has been queued. results will be emailed to you.",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
