package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// KeystoreProvider uses an encrypted keystore directory. Access is granted by
// unlocking the account with its passphrase.
type KeystoreProvider struct {
	ks      *keystore.KeyStore
	account accounts.Account
}

// OpenKeystore opens a keystore directory with the standard scrypt parameters
func OpenKeystore(dir string) *keystore.KeyStore {
	return keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
}

// NewKeystoreProvider selects account from ks, or the first account if it is empty
func NewKeystoreProvider(ks *keystore.KeyStore, account string) (*KeystoreProvider, error) {
	accs := ks.Accounts()
	if len(accs) == 0 {
		return nil, fmt.Errorf("%w: keystore has no accounts", governance.ErrWalletUnavailable)
	}

	acc := accs[0]
	if account != "" {
		if !common.IsHexAddress(account) {
			return nil, fmt.Errorf("%w: wallet account %q is malformed", governance.ErrConfiguration, account)
		}

		var err error
		acc, err = ks.Find(accounts.Account{Address: common.HexToAddress(account)})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", governance.ErrWalletUnavailable, err)
		}
	}

	return &KeystoreProvider{
		ks:      ks,
		account: acc,
	}, nil
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context, passphrase string) ([]common.Address, error) {
	err := p.ks.Unlock(p.account, passphrase)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, fmt.Errorf("%w: %w", governance.ErrUserRejected, err)
		}
		return nil, fmt.Errorf("%w: %w", governance.ErrWalletUnavailable, err)
	}

	return []common.Address{p.account.Address}, nil
}

func (p *KeystoreProvider) SignerFor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if account != p.account.Address {
		return nil, fmt.Errorf("%w: account %s is not managed by this wallet", governance.ErrUserRejected, account.Hex())
	}

	opts, err := bind.NewKeyStoreTransactorWithChainID(p.ks, p.account, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	return opts, nil
}

func (p *KeystoreProvider) Lock(account common.Address) error {
	return p.ks.Lock(account)
}
