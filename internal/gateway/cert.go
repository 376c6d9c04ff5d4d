package gateway

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidCertificate = errors.New("invalid certificate")

// Certificate holds the arguments of Cert.issue
type Certificate struct {
	ID     *big.Int `json:"id"`
	Name   string   `json:"name"`
	Course string   `json:"course"`
	Grade  string   `json:"grade"`
	Date   string   `json:"date"`
}

// CertIssuer is only ever called through a governance proposal, so it encodes
// calldata instead of sending transactions
type CertIssuer struct {
	abi     *abi.ABI
	address common.Address
}

func (c *CertIssuer) Address() common.Address {
	return c.address
}

func (c *CertIssuer) EncodeIssue(cert Certificate) ([]byte, error) {
	if cert.ID == nil || cert.ID.Sign() < 0 {
		return nil, ErrInvalidCertificate
	}

	return c.abi.Pack("issue", cert.ID, cert.Name, cert.Course, cert.Grade, cert.Date)
}
