package domain

// Messages shown in place of the registration form.
const (
	MessageRegistered = "Tack för din registrering!"
	MessageFailed     = "Något gick fel, kunde inte genomföra registreringen!"
)

// OutcomeKind classifies a registration attempt.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeUnknown
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Outcome is the registration state of one page. It starts Pending and
// moves to exactly one terminal kind.
type Outcome struct {
	Kind    OutcomeKind `json:"-"`
	Message string      `json:"message,omitempty"`
}

// PendingOutcome is the initial state of every page.
func PendingOutcome() Outcome { return Outcome{Kind: OutcomePending} }

// Terminal reports whether the registration form has been replaced.
func (o Outcome) Terminal() bool { return o.Kind != OutcomePending }

// TimeValue is the server time in seconds as reported by the backend. It is
// carried through page state unchanged and never branched on.
type TimeValue float64
