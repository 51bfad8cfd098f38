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

// MaxVideos is the fixed upper bound of items fetched per job.
const MaxVideos = 5

// Fetch retrieves the latest videos for a resolved channel. Subscribes to
// source.resolved, publishes items.fetched or items.error.
type Fetch struct {
	stage
	fetcher VideoFetcher
}

// NewFetch creates the item fetch stage.
func NewFetch(jobStore store.JobStore, publisher Publisher, fetcher VideoFetcher, logger *slog.Logger) *Fetch {
	return &Fetch{
		stage:   stage{store: jobStore, bus: publisher, logger: logger},
		fetcher: fetcher,
	}
}

// Handle processes one fetch-trigger event.
func (f *Fetch) Handle(ctx context.Context, evt bus.Event) error {
	payload, ok := evt.Payload.(core.SourceResolvedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T on topic %s", evt.Payload, evt.Topic)
	}

	f.logger.Info("fetching videos", "job_id", payload.JobID, "channel_id", payload.ChannelID)

	job, stageErr := f.loadJob(ctx, payload.JobID)
	if stageErr != nil {
		f.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicItemsError)
		return nil
	}

	if !job.Advance(core.StatusFetching) {
		f.logger.Warn("skipping redelivered event", "job_id", job.JobID, "status", job.Status, "topic", evt.Topic)
		return nil
	}
	if stageErr := f.save(ctx, job); stageErr != nil {
		f.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicItemsError)
		return nil
	}

	videos, err := f.fetcher.LatestVideos(ctx, payload.ChannelID, MaxVideos)
	if err != nil {
		// The underlying cause stays in the logs; the submitter only sees a
		// generic message.
		f.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			classifyFetchError(err), core.TopicItemsError)
		return nil
	}
	if len(videos) == 0 {
		f.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			core.NewNoItemsError("No videos found for the channel"), core.TopicItemsError)
		return nil
	}

	job.Videos = videos
	job.Advance(core.StatusFetched)
	if stageErr := f.save(ctx, job); stageErr != nil {
		f.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicItemsError)
		return nil
	}

	channelName := payload.ChannelTitle
	if channelName == "" {
		channelName = payload.Channel
	}
	next := core.ItemsFetchedPayload{
		JobID:   job.JobID,
		Email:   job.Email,
		Channel: channelName,
		Videos:  videos,
	}
	if err := f.bus.Publish(ctx, core.TopicItemsFetched, next); err != nil {
		f.logger.Error("failed to publish items.fetched", "job_id", job.JobID, "error", err)
		return nil
	}

	f.logger.Info("videos fetched", "job_id", job.JobID, "video_count", len(videos))
	return nil
}

func classifyFetchError(err error) *core.StageError {
	if errors.Is(err, youtube.ErrMissingAPIKey) {
		return core.NewUpstreamConfigError(err.Error(),
			"failed to fetch videos. please try again later")
	}
	return core.NewUpstreamResponseError("video fetch failed",
		"failed to fetch videos. please try again later", err)
}
