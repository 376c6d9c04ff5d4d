package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGovABI(t *testing.T) {
	abis, err := Load()
	require.NoError(t, err)

	testTopics := makeGovTopics()

	require.Equal(t, 1, len(testTopics))

	evCreated := abis.Governor.Events["ProposalCreated"]
	require.Equal(t, evCreated.ID, testTopics[0][0])

	for _, m := range []string{"propose", "state", "castVote", "queue", "execute"} {
		_, ok := abis.Governor.Methods[m]
		require.True(t, ok, m)
	}

	for _, m := range []string{"mint", "delegate", "getVotes"} {
		_, ok := abis.Token.Methods[m]
		require.True(t, ok, m)
	}

	for _, m := range []string{"hasRole", "grantRole"} {
		_, ok := abis.Timelock.Methods[m]
		require.True(t, ok, m)
	}

	_, ok := abis.CertIssuer.Methods["issue"]
	require.True(t, ok)
}

func TestLoadIsShared(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)

	b, err := Load()
	require.NoError(t, err)

	require.Same(t, a, b)
}

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()

	require.Len(t, roles, 4)
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000000", roles[RoleAdmin].Hex())
	require.Equal(t, "0xb09aa5aeb3702cfd50b6b62bc4532604938f21248a27a1d5ca736082b6819cc1", roles[RoleProposer].Hex())
	require.Equal(t, "0xd8aa0f3194971a2a116679f7c2090f6939c8d4e01a2a8d7e41d55e5351469e63", roles[RoleExecutor].Hex())
}
