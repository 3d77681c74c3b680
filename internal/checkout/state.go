package checkout

import (
	"github.com/wichananm65/food-order-backend/internal/apperror"
)

type State string

const (
	StateGathering      State = "gathering"
	StateReady          State = "ready"
	StatePaymentPending State = "payment_pending"
	StateFulfilling     State = "fulfilling"
	StateCompleted      State = "completed"
	StateAborted        State = "aborted"
	StateFailed         State = "failed"
)

var transitions = map[State][]State{
	StateGathering:      {StateReady, StateAborted},
	StateReady:          {StatePaymentPending},
	StatePaymentPending: {StateReady, StateFulfilling},
	StateFulfilling:     {StateCompleted, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(from, to State) error {
	return apperror.New(apperror.CodeStateConflict, "checkout cannot move from "+string(from)+" to "+string(to)).
		WithDetails(map[string]any{"from": from, "to": to})
}
