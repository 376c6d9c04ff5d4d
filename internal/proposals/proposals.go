package proposals

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the read surface of the governor the list is built from
type Source interface {
	LatestBlock(ctx context.Context) (uint64, error)
	ProposalCreated(ctx context.Context, from uint64, to *uint64) ([]*contracts.ProposalCreated, error)
	State(ctx context.Context, id *big.Int) (uint64, error)
}

type Lister struct {
	startBlock uint64
	rate       uint64
	workers    int

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewLister creates a Lister that scans from startBlock. A rate of 0 fetches the whole
// history in one log query, otherwise logs are fetched in windows of rate blocks.
func NewLister(startBlock, rate uint64, workers int, logger *zap.Logger, m *metrics.Metrics) *Lister {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Lister{
		startBlock: startBlock,
		rate:       rate,
		workers:    workers,
		logger:     logger,
		metrics:    m,
	}
}

// List rebuilds the proposal list from the creation events and the live state of each proposal.
// The result keeps the order in which the events were found.
func (l *Lister) List(ctx context.Context, gov Source) ([]governance.Proposal, error) {
	start := time.Now()

	props, err := l.list(ctx, gov)
	l.metrics.ObserveRefresh(len(props), err, start)
	if err != nil {
		return nil, err
	}

	return props, nil
}

func (l *Lister) list(ctx context.Context, gov Source) ([]governance.Proposal, error) {
	evs, err := l.events(ctx, gov)
	if err != nil {
		return nil, err
	}

	props := make([]governance.Proposal, len(evs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, ev := range evs {
		i, ev := i, ev
		g.Go(func() error {
			v, err := gov.State(gctx, ev.ProposalID)
			l.metrics.IncStateCalls()
			if err != nil {
				return fmt.Errorf("state of proposal %s: %w", ev.ProposalID, err)
			}

			props[i] = proposalFromEvent(ev, governance.ProposalStateFromUint(v))
			if props[i].State == governance.ProposalStateUnknown {
				l.metrics.IncUnknownStates()
				l.logger.Warn("unknown proposal state", zap.String("id", props[i].ID), zap.Uint64("value", v))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, governance.Classify(err)
	}

	return props, nil
}

// events returns the creation events in [startBlock, latest]
func (l *Lister) events(ctx context.Context, gov Source) ([]*contracts.ProposalCreated, error) {
	if l.rate == 0 {
		l.metrics.IncLogQueries()

		evs, err := gov.ProposalCreated(ctx, l.startBlock, nil)
		if err != nil {
			return nil, governance.Classify(err)
		}
		return evs, nil
	}

	latest, err := gov.LatestBlock(ctx)
	if err != nil {
		return nil, governance.Classify(err)
	}

	evs := []*contracts.ProposalCreated{}
	for _, w := range Windows(l.startBlock, latest, l.rate) {
		to := w.To
		l.metrics.IncLogQueries()

		page, err := gov.ProposalCreated(ctx, w.From, &to)
		if err != nil {
			return nil, governance.Classify(err)
		}

		evs = append(evs, page...)
	}

	l.logger.Debug("fetched proposal events", zap.Int("count", len(evs)), zap.Uint64("latest", latest))

	return evs, nil
}

func proposalFromEvent(ev *contracts.ProposalCreated, state governance.ProposalState) governance.Proposal {
	p := governance.Proposal{
		ID:          ev.ProposalID.String(),
		Description: ev.Description,
		State:       state,
		Proposer:    governance.NewIdentity(ev.Proposer).String(),
		BlockNumber: ev.BlockNumber,
		TxHash:      ev.TxHash.Hex(),
	}

	for _, t := range ev.Targets {
		p.Targets = append(p.Targets, t.Hex())
	}
	if ev.VoteStart != nil {
		p.VoteStart = ev.VoteStart.Uint64()
	}
	if ev.VoteEnd != nil {
		p.VoteEnd = ev.VoteEnd.Uint64()
	}

	return p
}
