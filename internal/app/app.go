package app

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/citizenwallet/govdash/internal/proposals"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type Connector interface {
	Connect(ctx context.Context, passphrase string) (governance.Identity, error)
	Disconnect(id governance.Identity) error
}

type Lister interface {
	List(ctx context.Context, gov proposals.Source) ([]governance.Proposal, error)
}

type RoleChecker interface {
	HasRole(ctx context.Context, role common.Hash, account common.Address) (bool, error)
}

type VoteCounter interface {
	GetVotes(ctx context.Context, account common.Address) (*big.Int, error)
}

type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyWarning(ctx context.Context, err error) error
	NotifyError(ctx context.Context, err error) error
}

// Readers are the read-only contract handles
type Readers struct {
	Governor proposals.Source
	Timelock RoleChecker
	Token    VoteCounter
}

type Options struct {
	Connector Connector
	Binder    dispatch.Binder
	Confirmer dispatch.Confirmer
	Readers   Readers
	Lister    Lister
	AdminRole common.Hash
	Notifier  Notifier

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// State is a snapshot of everything the dashboard shows
type State struct {
	Identity  governance.Identity   `json:"identity,omitempty"`
	Connected bool                  `json:"connected"`
	IsAdmin   bool                  `json:"is_admin"`
	Votes     string                `json:"votes,omitempty"`
	Proposals []governance.Proposal `json:"proposals"`
	Action    governance.Status     `json:"action"`
	Notice    string                `json:"notice,omitempty"`
	Loading   bool                  `json:"loading"`

	RefreshedAt time.Time `json:"refreshed_at,omitempty"`
}

// Busy reports whether an action is in flight
func (s State) Busy() bool {
	return s.Action.Phase.Busy()
}

// App owns the dashboard state. All changes go through its methods and are
// published to subscribers.
type App struct {
	connector Connector
	readers   Readers
	lister    Lister
	adminRole common.Hash
	notifier  Notifier
	logger    *zap.Logger

	dispatcher *dispatch.Dispatcher

	mu        sync.RWMutex
	state     State
	observers []func(State)

	// refreshes are numbered in start order, a result older than the one
	// on screen is discarded
	refreshStarted uint64
	refreshApplied uint64
	refreshing     int

	wg sync.WaitGroup
}

func New(o Options) *App {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	a := &App{
		connector: o.Connector,
		readers:   o.Readers,
		lister:    o.Lister,
		adminRole: o.AdminRole,
		notifier:  o.Notifier,
		logger:    o.Logger,
		state: State{
			Proposals: []governance.Proposal{},
			Action:    governance.Status{Phase: governance.PhaseIdle, UpdatedAt: time.Now()},
		},
	}

	a.dispatcher = dispatch.New(o.Binder, o.Confirmer, actionRefresher{a}, o.Logger, o.Metrics)
	a.dispatcher.Subscribe(a.onStatus)

	return a
}

// Close waits for outstanding notifications
func (a *App) Close() {
	a.wg.Wait()
}

func (a *App) Subscribe(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.observers = append(a.observers, fn)
}

// Snapshot returns a copy of the state. The action status is read from the dispatcher
// so it is current even before subscribers have been told about a new action.
func (a *App) Snapshot() State {
	a.mu.RLock()
	s := a.snapshot()
	a.mu.RUnlock()

	s.Action = a.dispatcher.Status()

	return s
}

func (a *App) snapshot() State {
	s := a.state
	s.Proposals = append([]governance.Proposal{}, a.state.Proposals...)
	return s
}

// update applies fn to the state and publishes the result
func (a *App) update(fn func(s *State)) {
	a.mu.Lock()
	fn(&a.state)
	s := a.snapshot()
	obs := make([]func(State), len(a.observers))
	copy(obs, a.observers)
	a.mu.Unlock()

	for _, o := range obs {
		o(s)
	}
}

func (a *App) Identity() governance.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.state.Identity
}

// Connect asks the wallet for an account. On failure the identity stays unset.
func (a *App) Connect(ctx context.Context, passphrase string) (governance.Identity, error) {
	if a.connector == nil {
		err := governance.ErrWalletUnavailable
		a.SetNotice(err)
		return "", err
	}

	id, err := a.connector.Connect(ctx, passphrase)
	if err != nil {
		a.SetNotice(err)
		return "", err
	}

	a.update(func(s *State) {
		s.Identity = id
		s.Connected = true
		s.IsAdmin = false
		s.Votes = ""
		s.Notice = ""
	})

	a.logger.Info("wallet connected", zap.String("identity", id.String()))

	if _, err := a.CheckAdmin(ctx); err != nil {
		a.logger.Warn("admin check failed", zap.Error(err))
	}
	if err := a.refreshVotes(ctx); err != nil {
		a.logger.Warn("votes lookup failed", zap.Error(err))
	}
	if err := a.Refresh(ctx); err != nil {
		a.logger.Warn("refresh after connect failed", zap.Error(err))
	}

	return id, nil
}

func (a *App) Disconnect() error {
	id := a.Identity()
	if id.IsZero() {
		return governance.ErrNotConnected
	}

	if a.connector != nil {
		if err := a.connector.Disconnect(id); err != nil {
			a.logger.Warn("wallet lock failed", zap.Error(err))
		}
	}

	a.update(func(s *State) {
		s.Identity = ""
		s.Connected = false
		s.IsAdmin = false
		s.Votes = ""
		s.Notice = ""
	})

	return nil
}

// CheckAdmin recomputes IsAdmin for the connected identity
func (a *App) CheckAdmin(ctx context.Context) (bool, error) {
	id := a.Identity()
	if id.IsZero() {
		return false, governance.ErrNotConnected
	}

	ok, err := a.readers.Timelock.HasRole(ctx, a.adminRole, id.Address())
	if err != nil {
		err = governance.Classify(err)
		a.SetNotice(err)
		return false, err
	}

	a.update(func(s *State) {
		if s.Identity == id {
			s.IsAdmin = ok
		}
	})

	return ok, nil
}

func (a *App) refreshVotes(ctx context.Context) error {
	id := a.Identity()
	if id.IsZero() || a.readers.Token == nil {
		return nil
	}

	votes, err := a.readers.Token.GetVotes(ctx, id.Address())
	if err != nil {
		return governance.Classify(err)
	}

	a.update(func(s *State) {
		if s.Identity == id {
			s.Votes = votes.String()
		}
	})

	return nil
}

// Refresh rebuilds the proposal list. On failure the previous list is kept.
// When refreshes overlap only results newer than the list shown are applied.
func (a *App) Refresh(ctx context.Context) error {
	var seq uint64
	a.update(func(s *State) {
		a.refreshStarted++
		seq = a.refreshStarted
		a.refreshing++
		s.Loading = true
	})

	props, err := a.lister.List(ctx, a.readers.Governor)

	a.update(func(s *State) {
		a.refreshing--
		s.Loading = a.refreshing > 0

		if seq < a.refreshApplied {
			return
		}

		if err != nil {
			s.Notice = noticeFor(err)
			return
		}

		a.refreshApplied = seq
		s.Proposals = props
		s.RefreshedAt = time.Now()
	})

	return err
}

// actionRefresher refreshes the list once an action settled. The action itself
// succeeded, so a failed refresh is only a warning.
type actionRefresher struct {
	a *App
}

func (r actionRefresher) Refresh(ctx context.Context) error {
	err := r.a.Refresh(ctx)
	if err != nil {
		r.a.notify(func(ctx context.Context) error {
			return r.a.notifier.NotifyWarning(ctx, fmt.Errorf("refresh after action: %w", err))
		})
	}

	return err
}

// Submit dispatches req for the connected identity without waiting for it to settle
func (a *App) Submit(ctx context.Context, req dispatch.Request) (*dispatch.Pending, error) {
	p, err := a.dispatcher.Submit(ctx, a.Identity(), req)
	if err != nil {
		a.SetNotice(err)
		return nil, err
	}

	return p, nil
}

// Do dispatches req and waits for it to settle
func (a *App) Do(ctx context.Context, req dispatch.Request) (dispatch.Result, error) {
	res, err := a.dispatcher.Do(ctx, a.Identity(), req)
	if err != nil && dispatchRejected(err) {
		a.SetNotice(err)
	}

	return res, err
}

func (a *App) onStatus(st governance.Status) {
	a.update(func(s *State) {
		s.Action = st
		switch st.Phase {
		case governance.PhaseSettled:
			s.Notice = fmt.Sprintf("%s confirmed in %s", st.Action, st.TxHash)
		case governance.PhaseFailed:
			s.Notice = noticeFor(st.Err)
		}
	})

	switch st.Phase {
	case governance.PhaseSettled:
		if st.Action == governance.ActionMint || st.Action == governance.ActionDelegate {
			if err := a.refreshVotes(context.Background()); err != nil {
				a.logger.Warn("votes lookup failed", zap.Error(err))
			}
		}
		a.notify(func(ctx context.Context) error {
			return a.notifier.Notify(ctx, fmt.Sprintf("%s confirmed: %s", st.Action, st.TxHash))
		})
	case governance.PhaseFailed:
		a.notify(func(ctx context.Context) error {
			return a.notifier.NotifyError(ctx, fmt.Errorf("%s: %w", st.Action, st.Err))
		})
	}
}

func (a *App) notify(fn func(ctx context.Context) error) {
	if a.notifier == nil {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil {
			a.logger.Warn("webhook notification failed", zap.Error(err))
		}
	}()
}

// SetNotice shows err to the user
func (a *App) SetNotice(err error) {
	a.update(func(s *State) {
		s.Notice = noticeFor(err)
	})
}

// dispatchRejected reports errors returned before anything was submitted.
// Failures after submission already reach the notice through the status.
func dispatchRejected(err error) bool {
	return errors.Is(err, governance.ErrNotConnected) ||
		errors.Is(err, governance.ErrBusy) ||
		errors.Is(err, governance.ErrInvalidInput)
}
