package common

import (
	"fmt"
	"strings"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a hex address typed by a user
func ParseAddress(field, addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %s is not an address", governance.ErrInvalidInput, field)
	}

	return common.HexToAddress(addr), nil
}
