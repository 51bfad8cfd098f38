package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/titleforge/internal/server/handler"
	"github.com/sevigo/titleforge/internal/stages"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(submission *stages.Submission, query *stages.Query, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	submitHandler := handler.NewSubmitHandler(submission, logger)
	jobsHandler := handler.NewJobsHandler(query, logger)

	r.Post("/submit", submitHandler.Handle)
	r.Get("/jobs", jobsHandler.Handle)
	r.Get("/jobs/{jobID}", jobsHandler.HandleOne)

	return r
}
