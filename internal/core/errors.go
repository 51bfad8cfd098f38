package core

import "fmt"

// FailureKind classifies a stage failure. Every pipeline stage after ingress
// catches its own failures, maps them to exactly one kind, and republishes on
// its error topic; no error crosses a handler boundary uncaught.
type FailureKind string

const (
	// KindValidation is bad client input, rejected synchronously at ingress.
	KindValidation FailureKind = "validation"
	// KindUpstreamConfig is a missing collaborator credential, fatal to the job.
	KindUpstreamConfig FailureKind = "upstream_config"
	// KindUpstreamResponse is a collaborator response that is non-success or
	// does not parse into the expected shape.
	KindUpstreamResponse FailureKind = "upstream_response"
	// KindDelivery is a rejected email send.
	KindDelivery FailureKind = "delivery"
	// KindNoItems is a source that resolved but yielded zero items.
	KindNoItems FailureKind = "no_items"
	// KindInternalConsistency is a missing or corrupt job record mid-pipeline.
	KindInternalConsistency FailureKind = "internal_consistency"
)

// StageError is the tagged failure result of a pipeline stage. Detail is for
// logs; UserMessage is the text attached to the job record and mailed to the
// submitter, which must not leak internal causes.
type StageError struct {
	Kind        FailureKind
	Detail      string
	UserMessage string
	Err         error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewValidationError reports bad client input; the detail is safe to surface.
func NewValidationError(detail string) *StageError {
	return &StageError{Kind: KindValidation, Detail: detail, UserMessage: detail}
}

// NewUpstreamConfigError reports a missing collaborator credential.
func NewUpstreamConfigError(detail, userMessage string) *StageError {
	return &StageError{Kind: KindUpstreamConfig, Detail: detail, UserMessage: userMessage}
}

// NewUpstreamResponseError wraps a collaborator failure with a generic
// user-facing message.
func NewUpstreamResponseError(detail, userMessage string, err error) *StageError {
	return &StageError{Kind: KindUpstreamResponse, Detail: detail, UserMessage: userMessage, Err: err}
}

// NewDeliveryError wraps a rejected email send.
func NewDeliveryError(detail, userMessage string, err error) *StageError {
	return &StageError{Kind: KindDelivery, Detail: detail, UserMessage: userMessage, Err: err}
}

// NewNoItemsError reports an empty fetch result, which the pipeline treats as
// a failure rather than an empty success.
func NewNoItemsError(userMessage string) *StageError {
	return &StageError{Kind: KindNoItems, Detail: "source returned zero items", UserMessage: userMessage}
}

// NewInternalConsistencyError reports a missing or unreadable job record.
func NewInternalConsistencyError(detail string, err error) *StageError {
	return &StageError{
		Kind:        KindInternalConsistency,
		Detail:      detail,
		UserMessage: "something went wrong while processing your request. please try again later",
		Err:         err,
	}
}
