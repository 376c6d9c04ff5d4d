package dispatch

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
)

// Request describes a single state-mutating call. Build it with one of the constructors below.
type Request struct {
	Action governance.Action

	// propose
	Targets     []common.Address
	Values      []*big.Int
	Calldatas   [][]byte
	Description string
	Certificate *gateway.Certificate

	// vote, queue, execute
	ProposalID *big.Int
	Support    uint8

	// mint, delegate, grant-role
	Account common.Address
	Amount  *big.Int
	Role    common.Hash
}

const (
	SupportAgainst uint8 = 0
	SupportFor     uint8 = 1
)

func ProposeRequest(targets []common.Address, values []*big.Int, calldatas [][]byte, description string) Request {
	return Request{
		Action:      governance.ActionPropose,
		Targets:     targets,
		Values:      values,
		Calldatas:   calldatas,
		Description: description,
	}
}

// ProposeCertificateRequest proposes a single call to the certificate issuer
func ProposeCertificateRequest(cert gateway.Certificate, description string) Request {
	return Request{
		Action:      governance.ActionPropose,
		Certificate: &cert,
		Description: description,
	}
}

func VoteRequest(id *big.Int, support uint8) Request {
	return Request{Action: governance.ActionVote, ProposalID: id, Support: support}
}

func QueueRequest(id *big.Int) Request {
	return Request{Action: governance.ActionQueue, ProposalID: id}
}

func ExecuteRequest(id *big.Int) Request {
	return Request{Action: governance.ActionExecute, ProposalID: id}
}

func MintRequest(to common.Address, amount *big.Int) Request {
	return Request{Action: governance.ActionMint, Account: to, Amount: amount}
}

func DelegateRequest(to common.Address) Request {
	return Request{Action: governance.ActionDelegate, Account: to}
}

func GrantRoleRequest(role common.Hash, grantee common.Address) Request {
	return Request{Action: governance.ActionGrantRole, Role: role, Account: grantee}
}

// Validate checks the request inputs. Errors match governance.ErrInvalidInput.
func (r Request) Validate() error {
	err := r.validate()
	if err != nil {
		return fmt.Errorf("%w: %w", governance.ErrInvalidInput, err)
	}
	return nil
}

func (r Request) validate() error {
	switch r.Action {
	case governance.ActionPropose:
		if r.Certificate != nil {
			if r.Certificate.ID == nil || r.Certificate.ID.Sign() < 0 {
				return errors.New("certificate id is required")
			}
			return nil
		}

		if len(r.Targets) == 0 {
			return errors.New("a proposal needs at least one target")
		}
		if len(r.Values) != len(r.Targets) || len(r.Calldatas) != len(r.Targets) {
			return errors.New("targets, values and calldatas must have the same length")
		}
		for _, v := range r.Values {
			if v == nil || v.Sign() < 0 {
				return errors.New("values must be non-negative")
			}
		}
		return nil
	case governance.ActionVote:
		if err := validID(r.ProposalID); err != nil {
			return err
		}
		if r.Support != SupportAgainst && r.Support != SupportFor {
			return fmt.Errorf("support must be %d or %d", SupportAgainst, SupportFor)
		}
		return nil
	case governance.ActionQueue, governance.ActionExecute:
		return validID(r.ProposalID)
	case governance.ActionMint:
		if (r.Account == common.Address{}) {
			return errors.New("recipient is required")
		}
		if r.Amount == nil || r.Amount.Sign() <= 0 {
			return errors.New("amount must be positive")
		}
		return nil
	case governance.ActionDelegate:
		if (r.Account == common.Address{}) {
			return errors.New("delegatee is required")
		}
		return nil
	case governance.ActionGrantRole:
		if (r.Account == common.Address{}) {
			return errors.New("grantee is required")
		}
		return nil
	}

	return fmt.Errorf("unknown action %q", r.Action)
}

func validID(id *big.Int) error {
	if id == nil || id.Sign() < 0 {
		return errors.New("proposal id is required")
	}
	return nil
}
