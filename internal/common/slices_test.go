package common

import (
	"testing"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	list := []governance.Proposal{
		{ID: "1", State: governance.ProposalStateActive},
		{ID: "2", State: governance.ProposalStateQueued},
		{ID: "3", State: governance.ProposalStateActive},
	}

	out := Filter(list, func(p governance.Proposal) bool {
		return p.State == governance.ProposalStateActive
	})
	require.Len(t, out, 2)
	require.Equal(t, "1", out[0].ID)
	require.Equal(t, "3", out[1].ID)

	require.Empty(t, Filter(list, func(p governance.Proposal) bool { return false }))
	require.NotNil(t, Filter([]int(nil), func(int) bool { return true }))
}
