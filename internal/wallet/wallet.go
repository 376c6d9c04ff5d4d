package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Provider is the wallet that holds the keys. It decides which accounts the
// dashboard may use and signs on their behalf.
type Provider interface {
	// RequestAccounts asks the wallet for access and returns the authorized accounts
	RequestAccounts(ctx context.Context, passphrase string) ([]common.Address, error)

	// SignerFor returns a signing handle for an authorized account
	SignerFor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// locker is implemented by providers that keep accounts unlocked while connected
type locker interface {
	Lock(account common.Address) error
}

type Connector struct {
	provider Provider
	chainID  *big.Int
}

func NewConnector(p Provider, chainID *big.Int) *Connector {
	return &Connector{
		provider: p,
		chainID:  chainID,
	}
}

// Connect requests account access and returns the first authorized account
func (c *Connector) Connect(ctx context.Context, passphrase string) (governance.Identity, error) {
	if c == nil || c.provider == nil {
		return "", governance.ErrWalletUnavailable
	}

	accs, err := c.provider.RequestAccounts(ctx, passphrase)
	if err != nil {
		if governance.Kind(err) == nil {
			return "", fmt.Errorf("%w: %w", governance.ErrUserRejected, err)
		}
		return "", err
	}

	if len(accs) == 0 {
		return "", fmt.Errorf("%w: no account authorized", governance.ErrUserRejected)
	}

	return governance.NewIdentity(accs[0]), nil
}

// Signer returns the signing handle of a connected identity
func (c *Connector) Signer(ctx context.Context, id governance.Identity) (*bind.TransactOpts, error) {
	if c == nil || c.provider == nil {
		return nil, governance.ErrWalletUnavailable
	}

	if id.IsZero() {
		return nil, governance.ErrNotConnected
	}

	return c.provider.SignerFor(ctx, id.Address(), c.chainID)
}

// Disconnect releases the account if the provider keeps it unlocked
func (c *Connector) Disconnect(id governance.Identity) error {
	if c == nil || c.provider == nil || id.IsZero() {
		return nil
	}

	l, ok := c.provider.(locker)
	if !ok {
		return nil
	}

	return l.Lock(id.Address())
}

// NewProvider picks the configured wallet. A private key takes precedence over a
// keystore directory. It returns nil when neither is set, the dashboard then
// runs read-only and Connect fails with ErrWalletUnavailable.
func NewProvider(privateKeyHex, keystoreDir, account string) (Provider, error) {
	switch {
	case privateKeyHex != "":
		p, err := NewKeyProvider(privateKeyHex)
		if err != nil {
			return nil, err
		}
		return p, nil
	case keystoreDir != "":
		p, err := NewKeystoreProvider(OpenKeystore(keystoreDir), account)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, nil
}
