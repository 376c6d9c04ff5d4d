package app

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/internal/proposals"
	"github.com/citizenwallet/govdash/internal/wallet"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testAccount = common.HexToAddress("0xAbCd000000000000000000000000000000000001")

type mockConnector struct {
	err          error
	disconnected bool
}

func (m *mockConnector) Connect(ctx context.Context, passphrase string) (governance.Identity, error) {
	if m.err != nil {
		return "", m.err
	}
	return governance.NewIdentity(testAccount), nil
}

func (m *mockConnector) Disconnect(id governance.Identity) error {
	m.disconnected = true
	return nil
}

// mockChain is a governor with a fixed set of proposals whose states can change
type mockChain struct {
	mu     sync.Mutex
	states map[string]uint64
	admins map[common.Address]bool

	executeErr error
	listErr    error
	sent       []string
}

func newMockChain() *mockChain {
	return &mockChain{
		states: map[string]uint64{"7": 1, "8": 5},
		admins: map[common.Address]bool{testAccount: true},
	}
}

func (m *mockChain) LatestBlock(ctx context.Context) (uint64, error) {
	return 100, nil
}

func (m *mockChain) ProposalCreated(ctx context.Context, from uint64, to *uint64) ([]*contracts.ProposalCreated, error) {
	m.mu.Lock()
	err := m.listErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return []*contracts.ProposalCreated{
		{ProposalID: big.NewInt(7), Description: "Issue cert #104", BlockNumber: 10},
		{ProposalID: big.NewInt(8), Description: "Issue cert #105", BlockNumber: 11},
	}, nil
}

func (m *mockChain) State(ctx context.Context, id *big.Int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.states[id.String()], nil
}

func (m *mockChain) HasRole(ctx context.Context, role common.Hash, account common.Address) (bool, error) {
	return m.admins[account], nil
}

func (m *mockChain) GetVotes(ctx context.Context, account common.Address) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (m *mockChain) tx(method string) *types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, method)
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(m.sent)), GasPrice: big.NewInt(1), Gas: 21000})
}

func (m *mockChain) Propose(ctx context.Context, targets []common.Address, values []*big.Int, calldatas [][]byte, description string) (*types.Transaction, error) {
	return m.tx("propose"), nil
}

func (m *mockChain) CastVote(ctx context.Context, id *big.Int, support uint8) (*types.Transaction, error) {
	return m.tx("castVote"), nil
}

func (m *mockChain) Queue(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	return m.tx("queue"), nil
}

func (m *mockChain) Execute(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	return m.tx("execute"), nil
}

func (m *mockChain) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return m.tx("mint"), nil
}

func (m *mockChain) Delegate(ctx context.Context, to common.Address) (*types.Transaction, error) {
	return m.tx("delegate"), nil
}

func (m *mockChain) GrantRole(ctx context.Context, role common.Hash, account common.Address) (*types.Transaction, error) {
	return m.tx("grantRole"), nil
}

func (m *mockChain) Address() common.Address {
	return common.HexToAddress("0x03")
}

func (m *mockChain) EncodeIssue(cert gateway.Certificate) ([]byte, error) {
	return []byte{0x01}, nil
}

func (m *mockChain) Bind(ctx context.Context, id governance.Identity) (*dispatch.Handles, error) {
	return &dispatch.Handles{Governor: m, Token: m, Timelock: m, CertIssuer: m}, nil
}

func (m *mockChain) WaitForTx(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	warnings []error
	errs     []error
}

func (m *mockNotifier) NotifyWarning(ctx context.Context, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, err)
	return nil
}

func (m *mockNotifier) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockNotifier) NotifyError(ctx context.Context, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	return nil
}

func newTestApp(c Connector, chain *mockChain, n Notifier) *App {
	return New(Options{
		Connector: c,
		Binder:    chain,
		Confirmer: chain,
		Readers:   Readers{Governor: chain, Timelock: chain, Token: chain},
		Lister:    proposals.NewLister(0, 0, 2, nil, nil),
		Notifier:  n,
	})
}

func TestConnectWithoutWallet(t *testing.T) {
	a := newTestApp(wallet.NewConnector(nil, big.NewInt(1)), newMockChain(), nil)
	defer a.Close()

	_, err := a.Connect(context.Background(), "")
	require.ErrorIs(t, err, governance.ErrWalletUnavailable)

	s := a.Snapshot()
	require.False(t, s.Connected)
	require.True(t, s.Identity.IsZero())
	require.NotEmpty(t, s.Notice)
}

func TestConnectRejected(t *testing.T) {
	a := newTestApp(&mockConnector{err: governance.ErrUserRejected}, newMockChain(), nil)
	defer a.Close()

	_, err := a.Connect(context.Background(), "wrong")
	require.ErrorIs(t, err, governance.ErrUserRejected)
	require.False(t, a.Snapshot().Connected)
}

func TestConnectAndDisconnect(t *testing.T) {
	c := &mockConnector{}
	a := newTestApp(c, newMockChain(), nil)
	defer a.Close()

	id, err := a.Connect(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, governance.Identity("0xabcd000000000000000000000000000000000001"), id)

	s := a.Snapshot()
	require.True(t, s.Connected)
	require.True(t, s.IsAdmin)
	require.Equal(t, "1000", s.Votes)
	require.Len(t, s.Proposals, 2)
	require.Equal(t, governance.ProposalStateActive, s.Proposals[0].State)

	require.NoError(t, a.Disconnect())
	require.True(t, c.disconnected)

	s = a.Snapshot()
	require.False(t, s.Connected)
	require.False(t, s.IsAdmin)
	require.Empty(t, s.Votes)

	require.ErrorIs(t, a.Disconnect(), governance.ErrNotConnected)
}

func TestNonAdmin(t *testing.T) {
	chain := newMockChain()
	chain.admins = map[common.Address]bool{}

	a := newTestApp(&mockConnector{}, chain, nil)
	defer a.Close()

	_, err := a.Connect(context.Background(), "")
	require.NoError(t, err)
	require.False(t, a.Snapshot().IsAdmin)
}

func TestDispatchRequiresConnection(t *testing.T) {
	chain := newMockChain()
	a := newTestApp(&mockConnector{}, chain, nil)
	defer a.Close()

	_, err := a.Do(context.Background(), dispatch.VoteRequest(big.NewInt(7), dispatch.SupportFor))
	require.ErrorIs(t, err, governance.ErrNotConnected)
	require.Empty(t, chain.sent)
	require.Equal(t, "Connect a wallet first.", a.Snapshot().Notice)
}

func TestVoteKeepsIdentityOfProposals(t *testing.T) {
	chain := newMockChain()
	n := &mockNotifier{}
	a := newTestApp(&mockConnector{}, chain, n)

	_, err := a.Connect(context.Background(), "")
	require.NoError(t, err)
	before := a.Snapshot().Proposals

	_, err = a.Do(context.Background(), dispatch.VoteRequest(big.NewInt(7), dispatch.SupportFor))
	require.NoError(t, err)

	after := a.Snapshot()
	require.Len(t, after.Proposals, len(before))
	for i := range before {
		require.Equal(t, before[i].ID, after.Proposals[i].ID)
		require.Equal(t, before[i].Description, after.Proposals[i].Description)
	}
	require.Equal(t, governance.PhaseIdle, after.Action.Phase)
	require.Contains(t, after.Notice, "vote confirmed")

	a.Close()
	require.Len(t, n.messages, 1)
}

func TestExecuteRevertLeavesListUnchanged(t *testing.T) {
	chain := newMockChain()
	chain.executeErr = errors.New("execution reverted: Governor: proposal not successful")
	n := &mockNotifier{}
	a := newTestApp(&mockConnector{}, chain, n)

	_, err := a.Connect(context.Background(), "")
	require.NoError(t, err)
	before := a.Snapshot()

	// proposal 7 is Active, not Queued
	_, err = a.Do(context.Background(), dispatch.ExecuteRequest(big.NewInt(7)))
	require.ErrorIs(t, err, governance.ErrCallReverted)

	after := a.Snapshot()
	require.Equal(t, before.Proposals, after.Proposals)
	require.Equal(t, before.RefreshedAt, after.RefreshedAt)
	require.Contains(t, after.Notice, "Transaction reverted")
	require.Equal(t, governance.PhaseIdle, after.Action.Phase)

	a.Close()
	require.Len(t, n.errs, 1)
	require.ErrorIs(t, n.errs[0], governance.ErrCallReverted)
}

func TestFailedRefreshAfterActionWarns(t *testing.T) {
	chain := newMockChain()
	n := &mockNotifier{}
	a := newTestApp(&mockConnector{}, chain, n)

	_, err := a.Connect(context.Background(), "")
	require.NoError(t, err)
	before := a.Snapshot()

	chain.mu.Lock()
	chain.listErr = errors.New("connection refused")
	chain.mu.Unlock()

	_, err = a.Do(context.Background(), dispatch.VoteRequest(big.NewInt(7), dispatch.SupportFor))
	require.NoError(t, err)
	require.Equal(t, before.Proposals, a.Snapshot().Proposals)

	a.Close()

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.warnings, 1)
	require.ErrorIs(t, n.warnings[0], governance.ErrNetworkFailure)
	require.Len(t, n.messages, 1)
	require.Empty(t, n.errs)
}

func TestSubscribe(t *testing.T) {
	a := newTestApp(&mockConnector{}, newMockChain(), nil)
	defer a.Close()

	var mu sync.Mutex
	loading := 0
	a.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		if s.Loading {
			loading++
		}
	})

	require.NoError(t, a.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, loading)
	require.False(t, a.Snapshot().Loading)
}

// heldLister answers each List call with the states queued for it, blocking
// until the test releases that call
type heldLister struct {
	calls chan chan []governance.Proposal
}

func (l *heldLister) List(ctx context.Context, gov proposals.Source) ([]governance.Proposal, error) {
	reply := make(chan []governance.Proposal)
	l.calls <- reply
	return <-reply, nil
}

func TestOverlappingRefreshKeepsNewestList(t *testing.T) {
	chain := newMockChain()
	l := &heldLister{calls: make(chan chan []governance.Proposal)}
	a := New(Options{
		Connector: &mockConnector{},
		Binder:    chain,
		Confirmer: chain,
		Readers:   Readers{Governor: chain, Timelock: chain, Token: chain},
		Lister:    l,
	})
	defer a.Close()

	queued := []governance.Proposal{{ID: "7", State: governance.ProposalStateQueued}}
	executed := []governance.Proposal{{ID: "7", State: governance.ProposalStateExecuted}}

	older := make(chan error, 1)
	go func() { older <- a.Refresh(context.Background()) }()
	olderReply := <-l.calls

	newer := make(chan error, 1)
	go func() { newer <- a.Refresh(context.Background()) }()
	newerReply := <-l.calls

	newerReply <- executed
	require.NoError(t, <-newer)

	s := a.Snapshot()
	require.Equal(t, governance.ProposalStateExecuted, s.Proposals[0].State)
	require.True(t, s.Loading)

	olderReply <- queued
	require.NoError(t, <-older)

	s = a.Snapshot()
	require.Equal(t, governance.ProposalStateExecuted, s.Proposals[0].State)
	require.False(t, s.Loading)
}
