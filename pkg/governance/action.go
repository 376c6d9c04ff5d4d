package governance

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionPropose   Action = "propose"
	ActionVote      Action = "vote"
	ActionQueue     Action = "queue"
	ActionExecute   Action = "execute"
	ActionMint      Action = "mint"
	ActionDelegate  Action = "delegate"
	ActionGrantRole Action = "grant-role"
)

// AffectsProposals reports whether a settled action could have changed proposal state
func (a Action) AffectsProposals() bool {
	switch a {
	case ActionPropose, ActionVote, ActionQueue, ActionExecute:
		return true
	}

	return false
}

// Phase is the lifecycle of a single dispatched transaction
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingConfirmation
	PhaseSettled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingConfirmation:
		return "awaiting_confirmation"
	case PhaseSettled:
		return "settled"
	case PhaseFailed:
		return "failed"
	}

	return "unknown"
}

// Busy reports whether a transaction is in flight
func (p Phase) Busy() bool {
	return p == PhaseSubmitting || p == PhaseAwaitingConfirmation
}

func (p Phase) Terminal() bool {
	return p == PhaseSettled || p == PhaseFailed
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Status is the action status shown to the user. Action, TxHash and Err are only
// set for the phases where they are meaningful.
type Status struct {
	Phase     Phase     `json:"phase"`
	Action    Action    `json:"action,omitempty"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Err       error     `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	type alias Status

	var msg string
	if s.Err != nil {
		msg = s.Err.Error()
	}

	return json.Marshal(struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias(s), msg})
}
