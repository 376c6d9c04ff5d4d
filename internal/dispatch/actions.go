package dispatch

import (
	"context"
	"math/big"

	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
)

// Do submits req and waits for it to settle. If ctx is done first the wait is abandoned
// but the action keeps running.
func (d *Dispatcher) Do(ctx context.Context, id governance.Identity, req Request) (Result, error) {
	p, err := d.Submit(ctx, id, req)
	if err != nil {
		return Result{Action: req.Action}, err
	}

	select {
	case <-p.Done():
		return p.Wait()
	case <-ctx.Done():
		return Result{Action: req.Action}, ctx.Err()
	}
}

func (d *Dispatcher) Propose(ctx context.Context, id governance.Identity, targets []common.Address, values []*big.Int, calldatas [][]byte, description string) (Result, error) {
	return d.Do(ctx, id, ProposeRequest(targets, values, calldatas, description))
}

func (d *Dispatcher) ProposeCertificate(ctx context.Context, id governance.Identity, cert gateway.Certificate, description string) (Result, error) {
	return d.Do(ctx, id, ProposeCertificateRequest(cert, description))
}

func (d *Dispatcher) Vote(ctx context.Context, id governance.Identity, proposalID *big.Int, support uint8) (Result, error) {
	return d.Do(ctx, id, VoteRequest(proposalID, support))
}

func (d *Dispatcher) Queue(ctx context.Context, id governance.Identity, proposalID *big.Int) (Result, error) {
	return d.Do(ctx, id, QueueRequest(proposalID))
}

func (d *Dispatcher) Execute(ctx context.Context, id governance.Identity, proposalID *big.Int) (Result, error) {
	return d.Do(ctx, id, ExecuteRequest(proposalID))
}

func (d *Dispatcher) Mint(ctx context.Context, id governance.Identity, to common.Address, amount *big.Int) (Result, error) {
	return d.Do(ctx, id, MintRequest(to, amount))
}

func (d *Dispatcher) Delegate(ctx context.Context, id governance.Identity, to common.Address) (Result, error) {
	return d.Do(ctx, id, DelegateRequest(to))
}

func (d *Dispatcher) GrantRole(ctx context.Context, id governance.Identity, role common.Hash, grantee common.Address) (Result, error) {
	return d.Do(ctx, id, GrantRoleRequest(role, grantee))
}
