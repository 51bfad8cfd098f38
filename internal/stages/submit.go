package stages

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
)

// Basic local@domain.tld shape; anything fancier is the mail provider's problem.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission validates client input, creates the job record, and publishes
// the pipeline-start event. It is invoked synchronously by the ingress API
// and returns as soon as the record is stored and the event is queued.
type Submission struct {
	store  store.JobStore
	bus    Publisher
	logger *slog.Logger
}

// NewSubmission creates the submission stage.
func NewSubmission(jobStore store.JobStore, publisher Publisher, logger *slog.Logger) *Submission {
	return &Submission{
		store:  jobStore,
		bus:    publisher,
		logger: logger,
	}
}

// Submit accepts a channel name and contact email. On success it returns the
// freshly created job with status queued; downstream stages run asynchronously.
func (s *Submission) Submit(ctx context.Context, channel, email string) (*core.Job, error) {
	channel = strings.TrimSpace(channel)
	email = strings.TrimSpace(email)

	if channel == "" || email == "" {
		return nil, core.NewValidationError("missing required fields: provide channel name and email")
	}
	if !emailRegex.MatchString(email) {
		return nil, core.NewValidationError("invalid email format")
	}

	job := &core.Job{
		JobID:     newJobID(),
		Channel:   channel,
		Email:     email,
		Status:    core.StatusQueued,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Set(ctx, job); err != nil {
		return nil, fmt.Errorf("create job record: %w", err)
	}

	payload := core.SubmitPayload{
		JobID:   job.JobID,
		Channel: job.Channel,
		Email:   job.Email,
	}
	if err := s.bus.Publish(ctx, core.TopicPipelineSubmit, payload); err != nil {
		return nil, fmt.Errorf("publish pipeline start: %w", err)
	}

	s.logger.Info("job created", "job_id", job.JobID, "channel", channel)
	return job, nil
}

// newJobID combines a clock component with a random one; uniqueness is
// overwhelming probability, not a guarantee, and collisions are not guarded
// against beyond that.
func newJobID() string {
	random := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("job-%d_%s", time.Now().UnixMilli(), random)
}
