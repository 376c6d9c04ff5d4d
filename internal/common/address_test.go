package common

import (
	"testing"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("recipient", " 0x480fbe37526226b6c6e2a7afa449cdf661939d2f ")
	require.NoError(t, err)
	require.Equal(t, "0x480Fbe37526226b6c6E2a7AfA449cDf661939D2f", addr.Hex())

	_, err = ParseAddress("recipient", "not_an_address")
	require.ErrorIs(t, err, governance.ErrInvalidInput)
	require.Contains(t, err.Error(), "recipient")
}
