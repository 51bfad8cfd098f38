package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
	"github.com/sevigo/titleforge/internal/mailer"
	"github.com/sevigo/titleforge/internal/store"
)

// Delivery renders the result email and sends it to the submitter. Subscribes
// to titles.ready, publishes email.sent or email.error. A successful send is
// the job's terminal success state.
type Delivery struct {
	stage
	sender EmailSender
}

// NewDelivery creates the delivery stage.
func NewDelivery(jobStore store.JobStore, publisher Publisher, sender EmailSender, logger *slog.Logger) *Delivery {
	return &Delivery{
		stage:  stage{store: jobStore, bus: publisher, logger: logger},
		sender: sender,
	}
}

// Handle processes one delivery-trigger event.
func (d *Delivery) Handle(ctx context.Context, evt bus.Event) error {
	payload, ok := evt.Payload.(core.TitlesReadyPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T on topic %s", evt.Payload, evt.Topic)
	}

	d.logger.Info("delivering result email", "job_id", payload.JobID, "to", payload.Email)

	job, stageErr := d.loadJob(ctx, payload.JobID)
	if stageErr != nil {
		d.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicEmailError)
		return nil
	}

	if !job.Advance(core.StatusDelivering) {
		d.logger.Warn("skipping redelivered event", "job_id", job.JobID, "status", job.Status, "topic", evt.Topic)
		return nil
	}
	if stageErr := d.save(ctx, job); stageErr != nil {
		d.fail(ctx, nil, payload.JobID, payload.Email, payload.Channel, stageErr, core.TopicEmailError)
		return nil
	}

	subject := fmt.Sprintf("Improved Titles for %s", payload.Channel)
	body := renderEmail(payload.Channel, payload.ImprovedTitles)

	emailID, err := d.sender.Send(ctx, payload.Email, subject, body)
	if err != nil {
		d.fail(ctx, job, payload.JobID, payload.Email, payload.Channel,
			classifyDeliveryError(err), core.TopicEmailError)
		return nil
	}

	job.EmailID = emailID
	job.Complete(time.Now())
	if stageErr := d.save(ctx, job); stageErr != nil {
		// The email is out the door; the record just failed to catch up.
		d.logger.Error("failed to persist completed job", "job_id", job.JobID, "error", stageErr)
		return nil
	}

	next := core.EmailSentPayload{
		JobID:   job.JobID,
		Email:   job.Email,
		EmailID: emailID,
	}
	if err := d.bus.Publish(ctx, core.TopicEmailSent, next); err != nil {
		d.logger.Error("failed to publish email.sent", "job_id", job.JobID, "error", err)
		return nil
	}

	d.logger.Info("job completed", "job_id", job.JobID, "email_id", emailID)
	return nil
}

func classifyDeliveryError(err error) *core.StageError {
	if errors.Is(err, mailer.ErrMissingAPIKey) {
		return core.NewUpstreamConfigError(err.Error(),
			"failed to deliver the result email. please try again later")
	}
	return core.NewDeliveryError("email send rejected",
		"failed to deliver the result email. please try again later", err)
}

// renderEmail produces the plain-text result body: a header, one numbered
// block per suggestion, and a short footer.
func renderEmail(channel string, suggestions []core.TitleSuggestion) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TitleForge - Improved Titles for %s\n", channel)
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n\n")

	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. Original: %s\n", i+1, s.Original)
		fmt.Fprintf(&b, "   Improved: %s\n", s.Improved)
		if s.Rationale != "" {
			fmt.Fprintf(&b, "   Why: %s\n", s.Rationale)
		}
		if s.URL != "" {
			fmt.Fprintf(&b, "   Watch: %s\n", s.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\nGenerated by TitleForge\n")
	return b.String()
}
