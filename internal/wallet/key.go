package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyProvider signs with a single private key supplied in the configuration.
// Having the key configured counts as authorization, the passphrase is ignored.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewKeyProvider(privateKeyHex string) (*KeyProvider, error) {
	key, err := HexToPrivateKey(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet private key: %w", governance.ErrConfiguration, err)
	}

	return &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context, passphrase string) ([]common.Address, error) {
	return []common.Address{p.address}, nil
}

func (p *KeyProvider) SignerFor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	if account != p.address {
		return nil, fmt.Errorf("%w: account %s is not managed by this wallet", governance.ErrUserRejected, account.Hex())
	}

	opts, err := bind.NewKeyedTransactorWithChainID(p.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	return opts, nil
}

func HexToPrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
}
