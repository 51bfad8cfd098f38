package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
	"github.com/sevigo/titleforge/internal/youtube"
)

// Resolution turns the submitted channel name into a canonical channel id.
// Subscribes to pipeline.submit, publishes source.resolved or source.error.
type Resolution struct {
	stage
	resolver SourceResolver
}

// NewResolution creates the source resolution stage.
func NewResolution(jobStore store.JobStore, publisher Publisher, resolver SourceResolver, logger *slog.Logger) *Resolution {
	return &Resolution{
		stage:    stage{store: jobStore, bus: publisher, logger: logger},
		resolver: resolver,
	}
}

// Handle processes one pipeline-start event.
func (r *Resolution) Handle(ctx context.Context, evt bus.Event) error {
	payload, ok := evt.Payload.(core.SubmitPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T on topic %s", evt.Payload, evt.Topic)
	}

	r.logger.Info("resolving channel", "job_id", payload.JobID, "channel", payload.Channel)

	job, stageErr := r.loadJob(ctx, payload.JobID)
	if stageErr != nil {
		r.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicSourceError)
		return nil
	}

	if !job.Advance(core.StatusResolving) {
		r.logger.Warn("skipping redelivered event", "job_id", job.JobID, "status", job.Status, "topic", evt.Topic)
		return nil
	}
	if stageErr := r.save(ctx, job); stageErr != nil {
		r.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicSourceError)
		return nil
	}

	channel, err := r.resolver.ResolveChannel(ctx, payload.Channel)
	if err != nil {
		r.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			classifyResolveError(payload.Channel, err), core.TopicSourceError)
		return nil
	}

	job.ChannelID = channel.ID
	job.ChannelTitle = channel.Title
	job.Advance(core.StatusResolved)
	if stageErr := r.save(ctx, job); stageErr != nil {
		r.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicSourceError)
		return nil
	}

	next := core.SourceResolvedPayload{
		JobID:        job.JobID,
		Email:        job.Email,
		Channel:      job.Channel,
		ChannelID:    channel.ID,
		ChannelTitle: channel.Title,
	}
	if err := r.bus.Publish(ctx, core.TopicSourceResolved, next); err != nil {
		r.logger.Error("failed to publish source.resolved", "job_id", job.JobID, "error", err)
		return nil
	}

	r.logger.Info("channel resolved", "job_id", job.JobID, "channel_id", channel.ID)
	return nil
}

func classifyResolveError(name string, err error) *core.StageError {
	if errors.Is(err, youtube.ErrMissingAPIKey) {
		return core.NewUpstreamConfigError(err.Error(),
			"failed to resolve the channel. please try again later")
	}
	if errors.Is(err, youtube.ErrChannelNotFound) {
		return core.NewUpstreamResponseError(err.Error(),
			fmt.Sprintf("could not find a channel named %q", name), err)
	}
	return core.NewUpstreamResponseError("channel lookup failed",
		"failed to resolve the channel. please try again later", err)
}
