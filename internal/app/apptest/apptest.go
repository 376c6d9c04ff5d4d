// Package apptest provides an in-memory chain for tests of the dashboard handlers.
package apptest

import (
	"context"
	"math/big"
	"sync"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/internal/proposals"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var Account = common.HexToAddress("0xAbCd000000000000000000000000000000000001")

type Proposal struct {
	ID          int64
	Description string
	State       uint64
}

// Chain is a governor, token and timelock backed by memory. Transactions are
// recorded by method name and confirm immediately unless Hold is set.
type Chain struct {
	mu sync.Mutex

	Proposals []Proposal
	Admins    map[common.Address]bool
	Votes     *big.Int

	// SendErr is returned by every transactor
	SendErr error
	// Hold blocks confirmations until it is closed
	Hold chan struct{}

	sent []string
}

func NewChain() *Chain {
	return &Chain{
		Proposals: []Proposal{
			{ID: 7, Description: "Issue cert #104", State: 1},
			{ID: 8, Description: "Issue cert #105", State: 4},
			{ID: 9, Description: "Issue cert #106", State: 5},
		},
		Admins: map[common.Address]bool{Account: true},
		Votes:  big.NewInt(1000),
	}
}

func (c *Chain) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string{}, c.sent...)
}

func (c *Chain) LatestBlock(ctx context.Context) (uint64, error) {
	return 100, nil
}

func (c *Chain) ProposalCreated(ctx context.Context, from uint64, to *uint64) ([]*contracts.ProposalCreated, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	evs := []*contracts.ProposalCreated{}
	for i, p := range c.Proposals {
		evs = append(evs, &contracts.ProposalCreated{
			ProposalID:  big.NewInt(p.ID),
			Description: p.Description,
			BlockNumber: uint64(i + 1),
		})
	}

	return evs, nil
}

func (c *Chain) State(ctx context.Context, id *big.Int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.Proposals {
		if p.ID == id.Int64() {
			return p.State, nil
		}
	}

	return 255, nil
}

func (c *Chain) HasRole(ctx context.Context, role common.Hash, account common.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Admins[account], nil
}

func (c *Chain) GetVotes(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.Votes, nil
}

func (c *Chain) record(method string) (*types.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SendErr != nil {
		return nil, c.SendErr
	}

	c.sent = append(c.sent, method)
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(c.sent)), GasPrice: big.NewInt(1), Gas: 21000}), nil
}

func (c *Chain) Propose(ctx context.Context, targets []common.Address, values []*big.Int, calldatas [][]byte, description string) (*types.Transaction, error) {
	return c.record("propose")
}

func (c *Chain) CastVote(ctx context.Context, id *big.Int, support uint8) (*types.Transaction, error) {
	return c.record("castVote")
}

func (c *Chain) Queue(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	return c.record("queue")
}

func (c *Chain) Execute(ctx context.Context, id *big.Int) (*types.Transaction, error) {
	return c.record("execute")
}

func (c *Chain) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.record("mint")
}

func (c *Chain) Delegate(ctx context.Context, to common.Address) (*types.Transaction, error) {
	return c.record("delegate")
}

func (c *Chain) GrantRole(ctx context.Context, role common.Hash, account common.Address) (*types.Transaction, error) {
	return c.record("grantRole")
}

func (c *Chain) Address() common.Address {
	return common.HexToAddress("0xcfa21B33D304D57c4E964e3819588Eb5ac06B4D9")
}

func (c *Chain) EncodeIssue(cert gateway.Certificate) ([]byte, error) {
	return []byte(cert.Name), nil
}

func (c *Chain) Bind(ctx context.Context, id governance.Identity) (*dispatch.Handles, error) {
	return &dispatch.Handles{Governor: c, Token: c, Timelock: c, CertIssuer: c}, nil
}

func (c *Chain) WaitForTx(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c.mu.Lock()
	hold := c.Hold
	c.mu.Unlock()

	if hold != nil {
		<-hold
	}

	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

type connector struct {
	available bool
}

func (c connector) Connect(ctx context.Context, passphrase string) (governance.Identity, error) {
	if !c.available {
		return "", governance.ErrWalletUnavailable
	}
	return governance.NewIdentity(Account), nil
}

func (c connector) Disconnect(id governance.Identity) error {
	return nil
}

// NewApp returns an App over c. With withWallet false, Connect fails with ErrWalletUnavailable.
func NewApp(c *Chain, withWallet bool) *app.App {
	return app.New(app.Options{
		Connector: connector{available: withWallet},
		Binder:    c,
		Confirmer: c,
		Readers:   app.Readers{Governor: c, Timelock: c, Token: c},
		Lister:    proposals.NewLister(0, 0, 2, nil, nil),
		AdminRole: common.Hash{},
	})
}
