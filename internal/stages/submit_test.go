package stages

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturingPublisher struct {
	events []struct {
		topic   string
		payload any
	}
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.events = append(p.events, struct {
		topic   string
		payload any
	}{topic, payload})
	return nil
}

func TestSubmitCreatesQueuedJob(t *testing.T) {
	logger := discardLogger()
	jobStore := store.NewMemoryStore(logger)
	publisher := &capturingPublisher{}
	sub := NewSubmission(jobStore, publisher, logger)

	job, err := sub.Submit(context.Background(), "  TechChannel  ", "creator@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(job.JobID, "job-"))
	assert.Equal(t, "TechChannel", job.Channel)
	assert.Equal(t, "creator@example.com", job.Email)
	assert.Equal(t, core.StatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())

	// The record must be readable before Submit returns.
	stored, err := jobStore.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueued, stored.Status)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, core.TopicPipelineSubmit, publisher.events[0].topic)
	payload, ok := publisher.events[0].payload.(core.SubmitPayload)
	require.True(t, ok)
	assert.Equal(t, job.JobID, payload.JobID)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		email   string
	}{
		{name: "empty channel", channel: "", email: "a@b.co"},
		{name: "empty email", channel: "TechChannel", email: ""},
		{name: "whitespace only", channel: "   ", email: "a@b.co"},
		{name: "not an email", channel: "TechChannel", email: "not-an-email"},
		{name: "missing tld", channel: "TechChannel", email: "a@b"},
		{name: "spaces in email", channel: "TechChannel", email: "a b@c.co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := discardLogger()
			jobStore := store.NewMemoryStore(logger)
			publisher := &capturingPublisher{}
			sub := NewSubmission(jobStore, publisher, logger)

			_, err := sub.Submit(context.Background(), tt.channel, tt.email)
			require.Error(t, err)

			var stageErr *core.StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, core.KindValidation, stageErr.Kind)

			// Rejected input must leave no record and no event.
			jobs, listErr := jobStore.List(context.Background())
			require.NoError(t, listErr)
			assert.Empty(t, jobs)
			assert.Empty(t, publisher.events)
		})
	}
}

func TestJobIDFormat(t *testing.T) {
	id := newJobID()
	assert.Regexp(t, `^job-\d+_[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, newJobID())
}
