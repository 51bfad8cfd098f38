package main

import (
	"time"

	"github.com/sevigo/titleforge/internal/core"
)

// Carries the latest job list fetched from the server.
type jobsLoadedMsg struct {
	jobs []core.Job
	err  error
}

// Reports the outcome of a submission.
type submitResultMsg struct {
	jobID   string
	message string
	err     error
}

// Drives the periodic refresh of the job list.
type refreshTickMsg time.Time

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
