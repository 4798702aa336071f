package wms

import (
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// State is the lifecycle state of a submission.
type State string

const (
	StateBuilt     State = "BUILT"
	StateSent      State = "SENT"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateUnknown   State = "UNKNOWN"
)

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateUnknown
}

// String returns the string representation
func (s State) String() string {
	return string(s)
}

// Result is the classified outcome of one submission. RequestPayload is
// always the exact paramsJson that was sent, so a failed request can be
// corrected and resubmitted.
type Result struct {
	SubmissionID   string                   `json:"submission_id"`
	State          State                    `json:"state"`
	Outcome        valueobject.Outcome      `json:"outcome"`
	Class          valueobject.FailureClass `json:"class"`
	Retryable      bool                     `json:"retryable"`
	Message        string                   `json:"message,omitempty"`
	OrderCode      string                   `json:"order_code,omitempty"`
	RequestPayload string                   `json:"request_payload"`
	Envelope       string                   `json:"-"`
	RawResponse    string                   `json:"raw_response,omitempty"`
	HTTPStatus     int                      `json:"http_status,omitempty"`
	Attempts       int                      `json:"attempts"`
	Duration       time.Duration            `json:"-"`
}

// Succeeded reports whether the warehouse accepted the order.
func (r *Result) Succeeded() bool {
	return r != nil && r.Outcome == valueobject.OutcomeSuccess
}

// Classification is what a response decoder concludes from a body.
type Classification struct {
	Outcome   valueobject.Outcome
	Class     valueobject.FailureClass
	Message   string
	OrderCode string
}

// SuccessClassification creates a success classification.
func SuccessClassification(message, orderCode string) Classification {
	return Classification{
		Outcome:   valueobject.OutcomeSuccess,
		Class:     valueobject.FailureClassNone,
		Message:   message,
		OrderCode: orderCode,
	}
}

// FailureClassification creates a failure classification.
func FailureClassification(class valueobject.FailureClass, message string) Classification {
	return Classification{Outcome: valueobject.OutcomeFailure, Class: class, Message: message}
}

// UnknownClassification creates an unclassifiable outcome.
func UnknownClassification(message string) Classification {
	return Classification{Outcome: valueobject.OutcomeUnknown, Class: valueobject.FailureClassNone, Message: message}
}

// Submission tracks one create-order call. It is not safe for concurrent use.
type Submission struct {
	id      string
	state   State
	payload string
	result  *Result
}

// NewSubmission starts a submission in the Built state for an encoded payload.
func NewSubmission(payload string) *Submission {
	return &Submission{
		id:      uuid.NewString(),
		state:   StateBuilt,
		payload: payload,
	}
}

// ID returns the submission id.
func (s *Submission) ID() string {
	return s.id
}

// State returns the current state.
func (s *Submission) State() State {
	return s.state
}

// Payload returns the encoded request payload.
func (s *Submission) Payload() string {
	return s.payload
}

// Result returns the terminal result, or nil before completion.
func (s *Submission) Result() *Result {
	return s.result
}

// MarkSent moves Built -> Sent.
func (s *Submission) MarkSent() error {
	if s.state != StateBuilt {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateSent)
	}
	s.state = StateSent
	return nil
}

// Complete moves Sent to the terminal state matching c and returns the
// result. The base result carries transport details such as the envelope,
// raw response and attempt count.
func (s *Submission) Complete(c Classification, base Result) (*Result, error) {
	target := terminalState(c.Outcome)
	if s.state != StateSent {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, target)
	}
	s.state = target

	r := base
	r.SubmissionID = s.id
	r.State = target
	r.Outcome = c.Outcome
	r.Class = c.Class
	if r.Class == "" {
		r.Class = valueobject.FailureClassNone
	}
	r.Retryable = c.Outcome == valueobject.OutcomeFailure && c.Class.Retryable()
	r.Message = c.Message
	r.OrderCode = c.OrderCode
	r.RequestPayload = s.payload
	s.result = &r
	return s.result, nil
}

func terminalState(o valueobject.Outcome) State {
	switch o {
	case valueobject.OutcomeSuccess:
		return StateSucceeded
	case valueobject.OutcomeFailure:
		return StateFailed
	default:
		return StateUnknown
	}
}
