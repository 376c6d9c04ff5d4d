package gateway

import (
	"fmt"

	"github.com/citizenwallet/govdash/internal/config"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Gateway associates the deployed governance contracts with a backend.
// Creating it and binding it perform no network calls.
type Gateway struct {
	backend bind.ContractBackend
	abis    *contracts.ABIs
	addrs   config.Addresses
}

func New(backend bind.ContractBackend, addrs config.Addresses) (*Gateway, error) {
	for name, a := range map[string]common.Address{
		"GovToken":   addrs.Token,
		"TimeLock":   addrs.Timelock,
		"Cert":       addrs.CertIssuer,
		"MyGovernor": addrs.Governor,
	} {
		if a == (common.Address{}) {
			return nil, fmt.Errorf("%w: %s address is not set", governance.ErrConfiguration, name)
		}
	}

	abis, err := contracts.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", governance.ErrConfiguration, err)
	}

	return &Gateway{
		backend: backend,
		abis:    abis,
		addrs:   addrs,
	}, nil
}

// Contracts are the four handles bound to a signer
type Contracts struct {
	Token      *Token
	Timelock   *Timelock
	CertIssuer *CertIssuer
	Governor   *Governor
}

// Bind returns handles that sign with signer. A nil signer gives read-only handles.
func (g *Gateway) Bind(signer *bind.TransactOpts) *Contracts {
	return &Contracts{
		Token:      &Token{g.bound(g.addrs.Token, g.abis.Token), signer, g.addrs.Token},
		Timelock:   &Timelock{g.bound(g.addrs.Timelock, g.abis.Timelock), signer},
		CertIssuer: &CertIssuer{g.abis.CertIssuer, g.addrs.CertIssuer},
		Governor:   &Governor{g.bound(g.addrs.Governor, g.abis.Governor), signer, g.backend, g.abis, g.addrs.Governor},
	}
}

// Reader returns read-only handles
func (g *Gateway) Reader() *Contracts {
	return g.Bind(nil)
}

func (g *Gateway) bound(addr common.Address, a *abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(addr, *a, g.backend, g.backend, g.backend)
}
