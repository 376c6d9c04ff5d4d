package governance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

type EVMRequester interface {
	Backend() bind.ContractBackend

	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlock(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)

	// WaitForTx blocks until tx is included in a block and returns its receipt.
	WaitForTx(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

	Close()
}
