package contracts

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	RoleAdmin     = "ADMIN_ROLE"
	RoleProposer  = "PROPOSER_ROLE"
	RoleExecutor  = "EXECUTOR_ROLE"
	RoleCanceller = "CANCELLER_ROLE"
)

// DefaultRoles returns the TimelockController role identifiers.
// ADMIN_ROLE is DEFAULT_ADMIN_ROLE, which is the zero hash.
func DefaultRoles() map[string]common.Hash {
	return map[string]common.Hash{
		RoleAdmin:     {},
		RoleProposer:  crypto.Keccak256Hash([]byte(RoleProposer)),
		RoleExecutor:  crypto.Keccak256Hash([]byte(RoleExecutor)),
		RoleCanceller: crypto.Keccak256Hash([]byte(RoleCanceller)),
	}
}
