// Package registration turns the registration form's result callback into
// the outcome shown in place of the form.
package registration

import (
	"encoding/json"
	"sync"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
)

// Payload is the result reported by the registration form. Type is kept as
// decoded JSON because the form may send anything, or nothing, there.
type Payload struct {
	Type    any    `json:"type"`
	Message string `json:"message,omitempty"`
}

// DecodePayload reads a form result. A body that is not a JSON object yields
// an empty payload, which classifies as unknown.
func DecodePayload(body []byte) Payload {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}
	}
	return p
}

// Classify maps a payload to its terminal outcome. Only the exact strings
// "success" and "failure" are recognised.
func Classify(p Payload) domain.Outcome {
	switch t, _ := p.Type.(string); t {
	case "success":
		return domain.Outcome{Kind: domain.OutcomeSuccess, Message: domain.MessageRegistered}
	case "failure":
		return domain.Outcome{Kind: domain.OutcomeFailure, Message: domain.MessageFailed}
	default:
		// Shown the same as success.
		return domain.Outcome{Kind: domain.OutcomeUnknown, Message: domain.MessageRegistered}
	}
}

// Controller holds one page's registration outcome.
type Controller struct {
	mu      sync.Mutex
	outcome domain.Outcome
}

// NewController returns a controller in the pending state.
func NewController() *Controller {
	return &Controller{outcome: domain.PendingOutcome()}
}

// OnRegistrationResult records the first result and reports true. Later
// calls leave the outcome unchanged and report false.
func (c *Controller) OnRegistrationResult(p Payload) (domain.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome.Terminal() {
		return c.outcome, false
	}
	c.outcome = Classify(p)
	return c.outcome, true
}

// Outcome returns the current outcome.
func (c *Controller) Outcome() domain.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// ShowForm reports whether the registration form is still displayed.
func (c *Controller) ShowForm() bool {
	return !c.Outcome().Terminal()
}
