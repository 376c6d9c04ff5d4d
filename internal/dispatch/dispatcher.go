package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type GovernorTransactor interface {
	Propose(ctx context.Context, targets []common.Address, values []*big.Int, calldatas [][]byte, description string) (*types.Transaction, error)
	CastVote(ctx context.Context, id *big.Int, support uint8) (*types.Transaction, error)
	Queue(ctx context.Context, id *big.Int) (*types.Transaction, error)
	Execute(ctx context.Context, id *big.Int) (*types.Transaction, error)
}

type TokenTransactor interface {
	Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error)
	Delegate(ctx context.Context, to common.Address) (*types.Transaction, error)
}

type TimelockTransactor interface {
	GrantRole(ctx context.Context, role common.Hash, account common.Address) (*types.Transaction, error)
}

type CertEncoder interface {
	Address() common.Address
	EncodeIssue(cert gateway.Certificate) ([]byte, error)
}

// Handles are the contract handles bound to the signer of one identity
type Handles struct {
	Governor   GovernorTransactor
	Token      TokenTransactor
	Timelock   TimelockTransactor
	CertIssuer CertEncoder
}

// HandlesFromContracts adapts gateway contracts to Handles
func HandlesFromContracts(c *gateway.Contracts) *Handles {
	return &Handles{
		Governor:   c.Governor,
		Token:      c.Token,
		Timelock:   c.Timelock,
		CertIssuer: c.CertIssuer,
	}
}

type Binder interface {
	Bind(ctx context.Context, id governance.Identity) (*Handles, error)
}

type Confirmer interface {
	WaitForTx(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

type Result struct {
	Action  governance.Action
	TxHash  common.Hash
	Receipt *types.Receipt
}

// Pending is a dispatched action that has not settled yet
type Pending struct {
	done   chan struct{}
	result Result
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(r Result, err error) {
	p.result = r
	p.err = err
	close(p.done)
}

// Done is closed once the action has settled or failed
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the action has settled or failed
func (p *Pending) Wait() (Result, error) {
	<-p.done
	return p.result, p.err
}

// Dispatcher runs at most one state-mutating action at a time
type Dispatcher struct {
	binder    Binder
	confirmer Confirmer
	refresher Refresher

	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	status    governance.Status
	observers []func(governance.Status)

	// busy is held from Submit until the owning run has published Idle.
	// status alone cannot gate, it passes through the terminal phases first.
	busy bool
}

func New(binder Binder, confirmer Confirmer, refresher Refresher, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		binder:    binder,
		confirmer: confirmer,
		refresher: refresher,
		logger:    logger,
		metrics:   m,
		status:    governance.Status{Phase: governance.PhaseIdle, UpdatedAt: time.Now()},
	}
}

// Subscribe registers fn to be called on every status transition, in order
func (d *Dispatcher) Subscribe(fn func(governance.Status)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, fn)
}

func (d *Dispatcher) Status() governance.Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.status
}

// Submit starts req for the identity id and returns without waiting for confirmation.
// The action runs detached from ctx since a submitted transaction cannot be withdrawn.
func (d *Dispatcher) Submit(ctx context.Context, id governance.Identity, req Request) (*Pending, error) {
	if id.IsZero() {
		return nil, governance.ErrNotConnected
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, governance.ErrBusy
	}
	d.busy = true
	d.status = governance.Status{Phase: governance.PhaseSubmitting, Action: req.Action, UpdatedAt: time.Now()}
	d.mu.Unlock()

	p := newPending()

	go d.run(context.Background(), id, req, p)

	return p, nil
}

func (d *Dispatcher) run(ctx context.Context, id governance.Identity, req Request, p *Pending) {
	start := time.Now()

	d.notify(d.Status())

	res, err := d.execute(ctx, id, req)

	d.metrics.ObserveAction(string(req.Action), err, start)

	if err != nil {
		d.logger.Error("action failed",
			zap.String("action", string(req.Action)),
			zap.String("identity", id.String()),
			zap.Error(err))

		if !errors.Is(err, governance.ErrUserRejected) {
			sentry.CaptureException(err)
		}

		d.transition(governance.Status{Phase: governance.PhaseFailed, Action: req.Action, TxHash: txHash(res), Err: err})
	} else {
		d.logger.Info("action settled",
			zap.String("action", string(req.Action)),
			zap.String("tx", res.TxHash.Hex()))

		d.transition(governance.Status{Phase: governance.PhaseSettled, Action: req.Action, TxHash: res.TxHash.Hex()})
	}

	d.transition(governance.Status{Phase: governance.PhaseIdle})

	// observers have seen Idle, only now may the next action start
	d.mu.Lock()
	d.busy = false
	d.mu.Unlock()

	p.resolve(res, err)
}

func (d *Dispatcher) execute(ctx context.Context, id governance.Identity, req Request) (Result, error) {
	res := Result{Action: req.Action}

	h, err := d.binder.Bind(ctx, id)
	if err != nil {
		return res, err
	}

	tx, err := send(ctx, h, req)
	if err != nil {
		return res, governance.Classify(err)
	}

	res.TxHash = tx.Hash()
	d.transition(governance.Status{Phase: governance.PhaseAwaitingConfirmation, Action: req.Action, TxHash: res.TxHash.Hex()})

	receipt, err := d.confirmer.WaitForTx(ctx, tx)
	if err != nil {
		return res, governance.Classify(err)
	}
	res.Receipt = receipt

	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, fmt.Errorf("%w: transaction %s reverted", governance.ErrCallReverted, res.TxHash.Hex())
	}

	if req.Action.AffectsProposals() && d.refresher != nil {
		// the action went through, a failed refresh only leaves the list stale
		if err := d.refresher.Refresh(ctx); err != nil {
			d.logger.Warn("refresh after action failed", zap.String("action", string(req.Action)), zap.Error(err))
		}
	}

	return res, nil
}

func send(ctx context.Context, h *Handles, req Request) (*types.Transaction, error) {
	switch req.Action {
	case governance.ActionPropose:
		targets, values, calldatas := req.Targets, req.Values, req.Calldatas
		if req.Certificate != nil {
			data, err := h.CertIssuer.EncodeIssue(*req.Certificate)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", governance.ErrInvalidInput, err)
			}

			targets = []common.Address{h.CertIssuer.Address()}
			values = []*big.Int{big.NewInt(0)}
			calldatas = [][]byte{data}
		}
		return h.Governor.Propose(ctx, targets, values, calldatas, req.Description)
	case governance.ActionVote:
		return h.Governor.CastVote(ctx, req.ProposalID, req.Support)
	case governance.ActionQueue:
		return h.Governor.Queue(ctx, req.ProposalID)
	case governance.ActionExecute:
		return h.Governor.Execute(ctx, req.ProposalID)
	case governance.ActionMint:
		return h.Token.Mint(ctx, req.Account, req.Amount)
	case governance.ActionDelegate:
		return h.Token.Delegate(ctx, req.Account)
	case governance.ActionGrantRole:
		return h.Timelock.GrantRole(ctx, req.Role, req.Account)
	}

	return nil, fmt.Errorf("%w: unknown action %q", governance.ErrInvalidInput, req.Action)
}

func (d *Dispatcher) transition(s governance.Status) {
	s.UpdatedAt = time.Now()

	d.mu.Lock()
	d.status = s
	d.mu.Unlock()

	d.notify(s)
}

func (d *Dispatcher) notify(s governance.Status) {
	d.mu.Lock()
	obs := make([]func(governance.Status), len(d.observers))
	copy(obs, d.observers)
	d.mu.Unlock()

	for _, fn := range obs {
		fn(s)
	}
}

func txHash(r Result) string {
	if r.TxHash == (common.Hash{}) {
		return ""
	}
	return r.TxHash.Hex()
}
