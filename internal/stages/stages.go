// Package stages implements the pipeline steps of the title workflow. Each
// stage is triggered by one topic, performs a full read-modify-write of the
// job record, calls its external collaborator, and publishes exactly one
// success or error event. No stage lets a failure escape its handler.
package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
	"github.com/sevigo/titleforge/internal/titlegen"
)

// Publisher is the slice of the event bus stages publish on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// SourceResolver maps a user-supplied channel name to its canonical identity.
type SourceResolver interface {
	ResolveChannel(ctx context.Context, name string) (core.Channel, error)
}

// VideoFetcher returns up to max items for a canonical channel id, newest first.
type VideoFetcher interface {
	LatestVideos(ctx context.Context, channelID string, max int64) ([]core.Video, error)
}

// TitleGenerator produces one improved title per input title, in input order.
type TitleGenerator interface {
	ImproveTitles(ctx context.Context, channelName string, titles []string) ([]titlegen.GeneratedTitle, error)
}

// EmailSender dispatches one message and returns a delivery receipt id.
type EmailSender interface {
	Send(ctx context.Context, to, subject, text string) (string, error)
}

// stage carries the collaborators every pipeline step shares.
type stage struct {
	store  store.JobStore
	bus    Publisher
	logger *slog.Logger
}

// loadJob reads the job record for an in-flight event. A missing record is an
// internal-consistency failure, not a silent no-op.
func (s *stage) loadJob(ctx context.Context, jobID string) (*core.Job, *core.StageError) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, core.NewInternalConsistencyError(
			fmt.Sprintf("job record %s is missing or unreadable mid-pipeline", jobID), err)
	}
	return job, nil
}

// fail records the failure on the job (when the record is available) and
// publishes the stage's error topic so the fan-in notifier can reach the
// submitter. Only the user-safe message is persisted and forwarded; the
// underlying cause stays in the logs.
func (s *stage) fail(ctx context.Context, job *core.Job, jobID, email, channel string, stageErr *core.StageError, errTopic string) {
	s.logger.Error("stage failed",
		"job_id", jobID,
		"kind", stageErr.Kind,
		"error", stageErr,
	)

	if job != nil {
		if job.Fail(stageErr.UserMessage) {
			if err := s.store.Set(ctx, job); err != nil {
				s.logger.Error("failed to persist job failure", "job_id", jobID, "error", err)
			}
		} else {
			s.logger.Warn("job already terminal, failure not recorded", "job_id", jobID, "status", job.Status)
		}
	}

	payload := core.JobErrorPayload{
		JobID:   jobID,
		Email:   email,
		Channel: channel,
		Error:   stageErr.UserMessage,
	}
	if err := s.bus.Publish(ctx, errTopic, payload); err != nil {
		s.logger.Error("failed to publish error event", "job_id", jobID, "topic", errTopic, "error", err)
	}
}

// save persists the job; a write failure at this point is logged and turned
// into an internal-consistency failure by the caller.
func (s *stage) save(ctx context.Context, job *core.Job) *core.StageError {
	if err := s.store.Set(ctx, job); err != nil {
		return core.NewInternalConsistencyError(
			fmt.Sprintf("failed to persist job %s", job.JobID), err)
	}
	return nil
}

// RegisterAll subscribes every stage to its trigger topic and the notifier to
// all error topics. Must run before any submission is accepted.
func RegisterAll(b *bus.Bus, resolution *Resolution, fetch *Fetch, transform *Transform, delivery *Delivery, notifier *Notifier) {
	b.Subscribe(core.TopicPipelineSubmit, "source-resolution", resolution.Handle)
	b.Subscribe(core.TopicSourceResolved, "item-fetch", fetch.Handle)
	b.Subscribe(core.TopicItemsFetched, "transformation", transform.Handle)
	b.Subscribe(core.TopicTitlesReady, "delivery", delivery.Handle)
	for _, topic := range core.ErrorTopics {
		b.Subscribe(topic, "error-notifier", notifier.Handle)
	}
}
