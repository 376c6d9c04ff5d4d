package gateway

import (
	"context"
	"errors"
	"math/big"

	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type Governor struct {
	contract *bind.BoundContract
	signer   *bind.TransactOpts
	backend  bind.ContractBackend
	abis     *contracts.ABIs
	address  common.Address
}

func (g *Governor) Address() common.Address {
	return g.address
}

// State returns the raw ProposalState value for id
func (g *Governor) State(ctx context.Context, id *big.Int) (uint64, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, "state", id)
	if err != nil {
		return 0, governance.Classify(err)
	}

	if len(out) != 1 {
		return 0, governance.Classify(errors.New("unexpected state output"))
	}

	v, ok := out[0].(uint8)
	if !ok {
		return 0, governance.Classify(errors.New("unexpected state output"))
	}

	return uint64(v), nil
}

// LatestBlock returns the current head of the chain
func (g *Governor) LatestBlock(ctx context.Context) (uint64, error) {
	h, err := g.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, governance.Classify(err)
	}

	return h.Number.Uint64(), nil
}

// ProposalCreated returns the creation events in [from, to]. A nil to means up to the latest block.
func (g *Governor) ProposalCreated(ctx context.Context, from uint64, to *uint64) ([]*contracts.ProposalCreated, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		Addresses: []common.Address{g.address},
		Topics:    contracts.ProposalCreatedQueryTopics(),
	}
	if to != nil {
		query.ToBlock = new(big.Int).SetUint64(*to)
	}

	logs, err := g.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, governance.Classify(err)
	}

	evs := make([]*contracts.ProposalCreated, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}

		ev, err := contracts.ParseProposalCreated(g.abis.Governor, l)
		if err != nil {
			return nil, err
		}

		evs = append(evs, ev)
	}

	return evs, nil
}

func (g *Governor) Propose(ctx context.Context, targets []common.Address, values []*big.Int, calldatas [][]byte, description string) (*types.Transaction, error) {
	return transact(ctx, g.contract, g.signer, "propose", targets, values, calldatas, description)
}

func (g *Governor) CastVote(ctx context.Context, id *big.Int, support uint8) (*types.Transaction, error) {
	return transact(ctx, g.contract, g.signer, "castVote", id, support)
}

func (g *Governor) Queue(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	return transact(ctx, g.contract, g.signer, "queue", id)
}

func (g *Governor) Execute(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	return transact(ctx, g.contract, g.signer, "execute", id)
}

// transact submits a single call signed by signer. The signer's own context is
// replaced by ctx so the submission follows the caller's lifetime.
func transact(ctx context.Context, c *bind.BoundContract, signer *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	if signer == nil {
		return nil, governance.ErrNotConnected
	}

	opts := *signer
	opts.Context = ctx

	tx, err := c.Transact(&opts, method, params...)
	if err != nil {
		return nil, governance.Classify(err)
	}

	return tx, nil
}
