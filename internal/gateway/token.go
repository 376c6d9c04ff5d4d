package gateway

import (
	"context"
	"errors"
	"math/big"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type Token struct {
	contract *bind.BoundContract
	signer   *bind.TransactOpts
	address  common.Address
}

func (t *Token) Address() common.Address {
	return t.address
}

func (t *Token) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return transact(ctx, t.contract, t.signer, "mint", to, amount)
}

func (t *Token) Delegate(ctx context.Context, to common.Address) (*types.Transaction, error) {
	return transact(ctx, t.contract, t.signer, "delegate", to)
}

// GetVotes returns the voting power currently delegated to account
func (t *Token) GetVotes(ctx context.Context, account common.Address) (*big.Int, error) {
	var out []interface{}
	err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getVotes", account)
	if err != nil {
		return nil, governance.Classify(err)
	}

	if len(out) != 1 {
		return nil, governance.Classify(errors.New("unexpected getVotes output"))
	}

	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, governance.Classify(errors.New("unexpected getVotes output"))
	}

	return v, nil
}
