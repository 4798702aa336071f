package valueobject

// Outcome is the classified result of one warehouse submission.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	// OutcomeUnknown means the response could not be classified and the
	// raw body has to be inspected by an operator.
	OutcomeUnknown Outcome = "UNKNOWN"
)

// IsValid checks if the outcome is known
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeUnknown:
		return true
	}
	return false
}

// String returns the string representation
func (o Outcome) String() string {
	return string(o)
}

// FailureClass refines a failed submission.
type FailureClass string

const (
	FailureClassNone FailureClass = "NONE"
	// FailureClassSKUNotFound is an application rejection an operator can fix
	// by correcting the item list and submitting again.
	FailureClassSKUNotFound FailureClass = "SKU_NOT_FOUND"
	FailureClassRejected    FailureClass = "REJECTED"
	FailureClassTransport   FailureClass = "TRANSPORT"
	FailureClassFault       FailureClass = "FAULT"
)

// IsValid checks if the failure class is known
func (c FailureClass) IsValid() bool {
	switch c {
	case FailureClassNone, FailureClassSKUNotFound, FailureClassRejected,
		FailureClassTransport, FailureClassFault:
		return true
	}
	return false
}

// Retryable reports whether a corrected resubmission can succeed.
// Only SKU_NOT_FOUND qualifies.
func (c FailureClass) Retryable() bool {
	return c == FailureClassSKUNotFound
}

// String returns the string representation
func (c FailureClass) String() string {
	return string(c)
}
