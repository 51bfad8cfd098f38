package core

// Topic names of the event bus. Stages communicate exclusively through these;
// the names are part of the external contract and must not change.
const (
	TopicPipelineSubmit = "pipeline.submit"
	TopicSourceResolved = "source.resolved"
	TopicSourceError    = "source.error"
	TopicItemsFetched   = "items.fetched"
	TopicItemsError     = "items.error"
	TopicTitlesReady    = "titles.ready"
	TopicTitlesError    = "titles.error"
	TopicEmailSent      = "email.sent"
	TopicEmailError     = "email.error"
	TopicErrorNotified  = "error.notified"
)

// ErrorTopics lists every error channel the fan-in notifier subscribes to.
var ErrorTopics = []string{
	TopicSourceError,
	TopicItemsError,
	TopicTitlesError,
	TopicEmailError,
}

// SubmitPayload starts the pipeline for one job. Published on TopicPipelineSubmit.
type SubmitPayload struct {
	JobID   string `json:"jobId"`
	Channel string `json:"channel"`
	Email   string `json:"email"`
}

// SourceResolvedPayload triggers the fetch stage. Published on TopicSourceResolved.
type SourceResolvedPayload struct {
	JobID        string `json:"jobId"`
	Email        string `json:"email"`
	Channel      string `json:"channel"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
}

// ItemsFetchedPayload triggers the transformation stage. Published on TopicItemsFetched.
type ItemsFetchedPayload struct {
	JobID   string  `json:"jobId"`
	Email   string  `json:"email"`
	Channel string  `json:"channel"`
	Videos  []Video `json:"videos"`
}

// TitlesReadyPayload triggers the delivery stage. Published on TopicTitlesReady.
type TitlesReadyPayload struct {
	JobID          string            `json:"jobId"`
	Email          string            `json:"email"`
	Channel        string            `json:"channel"`
	ImprovedTitles []TitleSuggestion `json:"improvedTitles"`
}

// EmailSentPayload is the terminal success event. Nothing subscribes to it;
// it exists so operators can observe normal completion on the bus.
type EmailSentPayload struct {
	JobID   string `json:"jobId"`
	Email   string `json:"email"`
	EmailID string `json:"emailId"`
}

// JobErrorPayload is published on every stage's error topic. It carries just
// enough context for the fan-in notifier to reach the submitter.
type JobErrorPayload struct {
	JobID   string `json:"jobId"`
	Email   string `json:"email"`
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error"`
}

// ErrorNotifiedPayload is the advisory terminal event after a failure notice
// was delivered.
type ErrorNotifiedPayload struct {
	JobID   string `json:"jobId"`
	Email   string `json:"email"`
	EmailID string `json:"emailId"`
}
