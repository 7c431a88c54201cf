package checkout

import (
	"fmt"

	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
)

// State is one step of the checkout flow.
type State string

const (
	StateBrowsing          State = "browsing"
	StateReviewing         State = "reviewing"
	StateConfirmingPartial State = "confirming-partial"
	StateSubmitting        State = "submitting"
	StateSubmitted         State = "submitted"
	StateFailed            State = "failed"
)

var transitions = map[State][]State{
	StateBrowsing:          {StateReviewing},
	StateReviewing:         {StateBrowsing, StateConfirmingPartial, StateSubmitting},
	StateConfirmingPartial: {StateReviewing, StateSubmitting},
	StateSubmitting:        {StateSubmitted, StateFailed},
	StateFailed:            {StateReviewing, StateBrowsing},
	StateSubmitted:         {StateBrowsing},
}

// Transition validates a state change against the flow graph.
func Transition(from, to State) (State, error) {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move from %s to %s", from, to))
}
