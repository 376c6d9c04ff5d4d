package gateway

import (
	"context"
	"errors"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type Timelock struct {
	contract *bind.BoundContract
	signer   *bind.TransactOpts
}

func (t *Timelock) HasRole(ctx context.Context, role common.Hash, account common.Address) (bool, error) {
	var out []interface{}
	err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasRole", [32]byte(role), account)
	if err != nil {
		return false, governance.Classify(err)
	}

	if len(out) != 1 {
		return false, governance.Classify(errors.New("unexpected hasRole output"))
	}

	v, ok := out[0].(bool)
	if !ok {
		return false, governance.Classify(errors.New("unexpected hasRole output"))
	}

	return v, nil
}

func (t *Timelock) GrantRole(ctx context.Context, role common.Hash, account common.Address) (*types.Transaction, error) {
	return transact(ctx, t.contract, t.signer, "grantRole", [32]byte(role), account)
}
