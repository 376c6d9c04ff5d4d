package ethrequest

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

type EthService struct {
	rpc    *rpc.Client
	client *ethclient.Client
}

func NewEthService(ctx context.Context, endpoint string) (*EthService, error) {
	rpc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	client := ethclient.NewClient(rpc)

	return &EthService{rpc, client}, nil
}

func (e *EthService) Close() {
	e.client.Close()
}

func (e *EthService) Backend() bind.ContractBackend {
	return e.client
}

func (e *EthService) ChainID(ctx context.Context) (*big.Int, error) {
	return e.client.ChainID(ctx)
}

func (e *EthService) LatestBlock(ctx context.Context) (uint64, error) {
	return e.client.BlockNumber(ctx)
}

func (e *EthService) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return e.client.FilterLogs(ctx, q)
}

// WaitForTx waits for one confirmation of tx. There is no timeout, a submitted
// transaction cannot be withdrawn so the caller can only wait for the outcome.
func (e *EthService) WaitForTx(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, e.client, tx)
}
