package governance

import (
	"encoding/json"
	"errors"
)

//	enum ProposalState {
//		Pending,
//		Active,
//		Canceled,
//		Defeated,
//		Succeeded,
//		Queued,
//		Expired,
//		Executed
//	}
type ProposalState uint8

const (
	ProposalStatePending ProposalState = iota
	ProposalStateActive
	ProposalStateCanceled
	ProposalStateDefeated
	ProposalStateSucceeded
	ProposalStateQueued
	ProposalStateExpired
	ProposalStateExecuted

	// ProposalStateUnknown is returned for any value the governor reports outside the enum
	ProposalStateUnknown ProposalState = 255
)

var proposalStateNames = [...]string{
	"Pending",
	"Active",
	"Canceled",
	"Defeated",
	"Succeeded",
	"Queued",
	"Expired",
	"Executed",
}

// ProposalStateFromUint maps the raw value returned by Governor.state(id)
func ProposalStateFromUint(v uint64) ProposalState {
	if v >= uint64(len(proposalStateNames)) {
		return ProposalStateUnknown
	}

	return ProposalState(v)
}

func ProposalStateFromString(s string) (ProposalState, error) {
	for i, name := range proposalStateNames {
		if name == s {
			return ProposalState(i), nil
		}
	}

	if s == "Unknown" {
		return ProposalStateUnknown, nil
	}

	return ProposalStateUnknown, errors.New("unknown proposal state: " + s)
}

func (s ProposalState) String() string {
	if int(s) < len(proposalStateNames) {
		return proposalStateNames[s]
	}

	return "Unknown"
}

func (s ProposalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ProposalState) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	v, err := ProposalStateFromString(str)
	if err != nil {
		return err
	}

	*s = v
	return nil
}

// Actions returns the actions the dashboard offers for a proposal in this state.
// The governor remains the authority, this only decides which controls are shown.
func (s ProposalState) Actions() []Action {
	switch s {
	case ProposalStateActive:
		return []Action{ActionVote}
	case ProposalStateSucceeded:
		return []Action{ActionQueue}
	case ProposalStateQueued:
		return []Action{ActionExecute}
	}

	return nil
}

func (s ProposalState) Allows(a Action) bool {
	for _, allowed := range s.Actions() {
		if allowed == a {
			return true
		}
	}

	return false
}

type Proposal struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	State       ProposalState `json:"state"`

	Proposer  string   `json:"proposer,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	VoteStart uint64   `json:"vote_start,omitempty"`
	VoteEnd   uint64   `json:"vote_end,omitempty"`

	BlockNumber uint64 `json:"block_number,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
}
