// Package store provides keyed persistence for job records. Every backend
// exposes the same three operations: get by key, whole-record overwrite by key,
// and a prefix scan over all job keys.
//
// The store offers no compare-and-swap. Single-writer-per-job is guaranteed by
// the bus (one delivery goroutine per subscription, strictly linear pipeline),
// not by the store; concurrent writers to the same job would be last-write-wins.
package store

import (
	"context"
	"errors"

	"github.com/sevigo/titleforge/internal/core"
)

// KeyPrefix is the literal prefix placed before the job id to build the
// persistence key. It is part of the stored-data contract across backends.
const KeyPrefix = "job:"

// ErrNotFound is returned when no record exists under the requested key.
var ErrNotFound = errors.New("job not found")

// Key builds the persistence key for a job id.
func Key(jobID string) string {
	return KeyPrefix + jobID
}

// JobStore is the keyed persistence contract shared by all pipeline stages.
type JobStore interface {
	// Get returns the record stored under the job id, or ErrNotFound.
	Get(ctx context.Context, jobID string) (*core.Job, error)

	// Set overwrites the whole record. Stages must only write records they
	// read first for the same job (full read-modify-write).
	Set(ctx context.Context, job *core.Job) error

	// List returns every stored job record in no particular order. Records
	// that fail to decode are logged and skipped, never fail the listing.
	List(ctx context.Context) ([]*core.Job, error)

	// Close releases the backend connection, if any.
	Close() error
}
