package app

import (
	"context"

	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/gateway"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

type Signer interface {
	Signer(ctx context.Context, id governance.Identity) (*bind.TransactOpts, error)
}

// GatewayBinder binds the gateway contracts to the signer of an identity
type GatewayBinder struct {
	signer  Signer
	gateway *gateway.Gateway
}

func NewGatewayBinder(s Signer, g *gateway.Gateway) *GatewayBinder {
	return &GatewayBinder{signer: s, gateway: g}
}

func (b *GatewayBinder) Bind(ctx context.Context, id governance.Identity) (*dispatch.Handles, error) {
	opts, err := b.signer.Signer(ctx, id)
	if err != nil {
		return nil, err
	}

	return dispatch.HandlesFromContracts(b.gateway.Bind(opts)), nil
}

// ReadersFromGateway returns the read-only handles of g
func ReadersFromGateway(g *gateway.Gateway) Readers {
	c := g.Reader()
	return Readers{
		Governor: c.Governor,
		Timelock: c.Timelock,
		Token:    c.Token,
	}
}
