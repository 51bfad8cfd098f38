// Package core defines the essential data structures and contracts that form the
// backbone of the title pipeline: the job record, its status machine, the event
// topics the stages communicate over, and the failure taxonomy.
package core

import "time"

// Status is the closed set of states a job moves through. Transitions only go
// forward along the pipeline, or sideways into StatusFailed.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusResolving    Status = "resolving"
	StatusResolved     Status = "resolved"
	StatusFetching     Status = "fetching"
	StatusFetched      Status = "fetched"
	StatusTransforming Status = "transforming"
	StatusTitlesReady  Status = "titles_ready"
	StatusDelivering   Status = "delivering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// statusRank orders the forward path. StatusFailed is reachable from any
// non-terminal state and has no rank.
var statusRank = map[Status]int{
	StatusQueued:       0,
	StatusResolving:    1,
	StatusResolved:     2,
	StatusFetching:     3,
	StatusFetched:      4,
	StatusTransforming: 5,
	StatusTitlesReady:  6,
	StatusDelivering:   7,
	StatusCompleted:    8,
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether a job may move from one status to the next.
// Only strictly forward moves and the sideways move into StatusFailed are
// allowed, so a duplicate or out-of-order event can never move a job backward.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// Video is a single fetched item, normalized from the source collaborator.
type Video struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnail"`
}

// TitleSuggestion pairs a fetched video with the generated improvement.
// Original and URL come from the fetched item; Improved and Rationale from the
// generative collaborator, matched by positional index.
type TitleSuggestion struct {
	Original  string `json:"original"`
	Improved  string `json:"improved"`
	Rationale string `json:"rationale"`
	URL       string `json:"url"`
}

// Channel is the canonical source identity resolved from a user-supplied name.
type Channel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Job is the single persistent entity of the pipeline. It is created by the
// submission stage and then mutated by exactly one stage at a time via full
// read-modify-write against the job store.
type Job struct {
	JobID          string            `json:"jobId"`
	Channel        string            `json:"channel"`
	ChannelID      string            `json:"channelId,omitempty"`
	ChannelTitle   string            `json:"channelTitle,omitempty"`
	Email          string            `json:"email"`
	Status         Status            `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
	Videos         []Video           `json:"videos,omitempty"`
	ImprovedTitles []TitleSuggestion `json:"improvedTitles,omitempty"`
	EmailID        string            `json:"emailId,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Advance moves the job to the given status if the transition table allows it.
// It returns false when the move is rejected, which callers treat as a
// redelivered or out-of-order event and skip their work (idempotent handlers).
func (j *Job) Advance(to Status) bool {
	if !CanTransition(j.Status, to) {
		return false
	}
	j.Status = to
	return true
}

// Fail marks the job failed with a human-readable description. CompletedAt and
// Error are mutually exclusive terminal markers; Fail never touches CompletedAt.
func (j *Job) Fail(reason string) bool {
	if !j.Advance(StatusFailed) {
		return false
	}
	j.Error = reason
	return true
}

// Complete marks the terminal success state and stamps CompletedAt once.
func (j *Job) Complete(now time.Time) bool {
	if !j.Advance(StatusCompleted) {
		return false
	}
	t := now.UTC()
	j.CompletedAt = &t
	return true
}
