package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/store"
	"github.com/sevigo/titleforge/internal/titlegen"
)

// Transform asks the generative collaborator for improved titles and pairs
// them with the fetched videos by positional index. Subscribes to
// items.fetched, publishes titles.ready or titles.error.
type Transform struct {
	stage
	generator TitleGenerator
}

// NewTransform creates the title transformation stage.
func NewTransform(jobStore store.JobStore, publisher Publisher, generator TitleGenerator, logger *slog.Logger) *Transform {
	return &Transform{
		stage:     stage{store: jobStore, bus: publisher, logger: logger},
		generator: generator,
	}
}

// Handle processes one transformation-trigger event.
func (t *Transform) Handle(ctx context.Context, evt bus.Event) error {
	payload, ok := evt.Payload.(core.ItemsFetchedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T on topic %s", evt.Payload, evt.Topic)
	}

	t.logger.Info("improving titles", "job_id", payload.JobID, "video_count", len(payload.Videos))

	job, stageErr := t.loadJob(ctx, payload.JobID)
	if stageErr != nil {
		t.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicTitlesError)
		return nil
	}

	if !job.Advance(core.StatusTransforming) {
		t.logger.Warn("skipping redelivered event", "job_id", job.JobID, "status", job.Status, "topic", evt.Topic)
		return nil
	}
	if stageErr := t.save(ctx, job); stageErr != nil {
		t.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicTitlesError)
		return nil
	}

	titles := make([]string, len(payload.Videos))
	for i, v := range payload.Videos {
		titles[i] = v.Title
	}

	generated, err := t.generator.ImproveTitles(ctx, payload.Channel, titles)
	if err != nil {
		t.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			classifyTransformError(err), core.TopicTitlesError)
		return nil
	}
	if len(generated) != len(payload.Videos) {
		t.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			core.NewUpstreamResponseError(
				fmt.Sprintf("generator returned %d titles for %d videos", len(generated), len(payload.Videos)),
				"failed to improve the titles. please try again later", nil),
			core.TopicTitlesError)
		return nil
	}

	// Pairing is positional: the prompt presents the titles as a numbered list
	// and the response contract requires one entry per input, in order.
	suggestions := make([]core.TitleSuggestion, len(generated))
	for i, g := range generated {
		if g.Original != "" && g.Original != payload.Videos[i].Title {
			t.logger.Warn("generator echoed a different original title",
				"job_id", job.JobID, "index", i, "got", g.Original, "want", payload.Videos[i].Title)
		}
		suggestions[i] = core.TitleSuggestion{
			Original:  payload.Videos[i].Title,
			Improved:  g.Improved,
			Rationale: g.Rationale,
			URL:       payload.Videos[i].URL,
		}
	}

	job.ImprovedTitles = suggestions
	job.Advance(core.StatusTitlesReady)
	if stageErr := t.save(ctx, job); stageErr != nil {
		t.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicTitlesError)
		return nil
	}

	next := core.TitlesReadyPayload{
		JobID:          job.JobID,
		Email:          job.Email,
		Channel:        payload.Channel,
		ImprovedTitles: suggestions,
	}
	if err := t.bus.Publish(ctx, core.TopicTitlesReady, next); err != nil {
		t.logger.Error("failed to publish titles.ready", "job_id", job.JobID, "error", err)
		return nil
	}

	t.logger.Info("titles improved", "job_id", job.JobID, "title_count", len(suggestions))
	return nil
}

func classifyTransformError(err error) *core.StageError {
	if errors.Is(err, titlegen.ErrMissingCredential) {
		return core.NewUpstreamConfigError(err.Error(),
			"failed to improve the titles. please try again later")
	}
	return core.NewUpstreamResponseError("title generation failed",
		"failed to improve the titles. please try again later", err)
}
