package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/titleforge/internal/bus"
	"github.com/sevigo/titleforge/internal/core"
)

// Notifier is the fan-in consumer of every error topic. It emails the
// submitter a failure notice. A notifier failure is logged and swallowed so a
// broken mail path can never cascade into further error events.
type Notifier struct {
	bus    Publisher
	sender EmailSender
	logger *slog.Logger
}

// NewNotifier creates the failure notifier.
func NewNotifier(publisher Publisher, sender EmailSender, logger *slog.Logger) *Notifier {
	return &Notifier{
		bus:    publisher,
		sender: sender,
		logger: logger,
	}
}

// Handle processes one job-failure event from any error topic.
func (n *Notifier) Handle(ctx context.Context, evt bus.Event) error {
	payload, ok := evt.Payload.(core.JobErrorPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T on topic %s", evt.Payload, evt.Topic)
	}

	n.logger.Info("sending failure notice",
		"job_id", payload.JobID, "to", payload.Email, "source_topic", evt.Topic)

	subject := "TitleForge - Request Failed"
	body := renderFailureEmail(payload.Channel, payload.Error)

	emailID, err := n.sender.Send(ctx, payload.Email, subject, body)
	if err != nil {
		n.logger.Error("failed to send failure notice",
			"job_id", payload.JobID, "to", payload.Email, "error", err)
		return nil
	}

	notified := core.ErrorNotifiedPayload{
		JobID:   payload.JobID,
		Email:   payload.Email,
		EmailID: emailID,
	}
	if err := n.bus.Publish(ctx, core.TopicErrorNotified, notified); err != nil {
		n.logger.Error("failed to publish error.notified", "job_id", payload.JobID, "error", err)
		return nil
	}

	n.logger.Info("failure notice sent", "job_id", payload.JobID, "email_id", emailID)
	return nil
}

func renderFailureEmail(channel, reason string) string {
	intro := "We could not complete your title request."
	if channel != "" {
		intro = fmt.Sprintf("We could not complete your title request for %q.", channel)
	}
	return fmt.Sprintf("%s\n\nReason: %s\n\nPlease check your input and try again.\n", intro, reason)
}
