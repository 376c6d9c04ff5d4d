package governance

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is the connected account, always lowercase hex
type Identity string

func NewIdentity(addr common.Address) Identity {
	return Identity(strings.ToLower(addr.Hex()))
}

func (i Identity) Address() common.Address {
	return common.HexToAddress(string(i))
}

func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
