package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func packProposalCreated(t *testing.T, id int64, description string) types.Log {
	abis, err := Load()
	require.NoError(t, err)

	target := common.HexToAddress("0x5815E61eF72c9E6107b5c5A05FD121F334f7a7f1")

	data, err := abis.Governor.Events["ProposalCreated"].Inputs.NonIndexed().Pack(
		big.NewInt(id),
		common.HexToAddress("0x29d755C17df3ED2eCAE6e42d694fb4F7E2ff6010"),
		[]common.Address{target},
		[]*big.Int{big.NewInt(0)},
		[]string{""},
		[][]byte{{0xde, 0xad, 0xbe, 0xef}},
		big.NewInt(100),
		big.NewInt(200),
		description,
	)
	require.NoError(t, err)

	return types.Log{
		Address:     target,
		Topics:      []common.Hash{GovProposalCreatedId},
		Data:        data,
		BlockNumber: 12,
		TxHash:      common.HexToHash("0x01"),
	}
}

func TestParseProposalCreated(t *testing.T) {
	abis, err := Load()
	require.NoError(t, err)

	l := packProposalCreated(t, 7, "Issue cert #104")

	ev, err := ParseProposalCreated(abis.Governor, l)
	require.NoError(t, err)

	require.Equal(t, "7", ev.ProposalID.String())
	require.Equal(t, "Issue cert #104", ev.Description)
	require.Equal(t, common.HexToAddress("0x29d755C17df3ED2eCAE6e42d694fb4F7E2ff6010"), ev.Proposer)
	require.Equal(t, []common.Address{common.HexToAddress("0x5815E61eF72c9E6107b5c5A05FD121F334f7a7f1")}, ev.Targets)
	require.Equal(t, [][]byte{{0xde, 0xad, 0xbe, 0xef}}, ev.Calldatas)
	require.Equal(t, int64(100), ev.VoteStart.Int64())
	require.Equal(t, int64(200), ev.VoteEnd.Int64())
	require.Equal(t, uint64(12), ev.BlockNumber)
	require.Equal(t, common.HexToHash("0x01"), ev.TxHash)
}

func TestParseProposalCreatedRejectsOtherEvents(t *testing.T) {
	abis, err := Load()
	require.NoError(t, err)

	l := packProposalCreated(t, 1, "x")
	l.Topics = []common.Hash{abis.Governor.Events["ProposalExecuted"].ID}

	_, err = ParseProposalCreated(abis.Governor, l)
	require.ErrorIs(t, err, ErrUnexpectedEvent)

	l.Topics = nil
	_, err = ParseProposalCreated(abis.Governor, l)
	require.ErrorIs(t, err, ErrUnexpectedEvent)
}

func TestParseProposalCreatedRejectsTruncatedData(t *testing.T) {
	abis, err := Load()
	require.NoError(t, err)

	l := packProposalCreated(t, 1, "x")
	l.Data = l.Data[:64]

	_, err = ParseProposalCreated(abis.Governor, l)
	require.Error(t, err)
}
