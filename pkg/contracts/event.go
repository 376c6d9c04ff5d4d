package contracts

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrUnexpectedEvent = errors.New("unexpected event")

// ProposalCreated is the decoded creation event of a governor proposal
//
//	event ProposalCreated(
//		uint256 proposalId,
//		address proposer,
//		address[] targets,
//		uint256[] values,
//		string[] signatures,
//		bytes[] calldatas,
//		uint256 voteStart,
//		uint256 voteEnd,
//		string description
//	);
type ProposalCreated struct {
	ProposalID  *big.Int
	Proposer    common.Address
	Targets     []common.Address
	Values      []*big.Int
	Calldatas   [][]byte
	VoteStart   *big.Int
	VoteEnd     *big.Int
	Description string

	BlockNumber uint64
	TxHash      common.Hash
}

// ProposalCreatedQueryTopics returns the topic filter matching ProposalCreated
func ProposalCreatedQueryTopics() [][]common.Hash {
	return makeGovTopics()
}

// ParseProposalCreated decodes a ProposalCreated log using the governor ABI
func ParseProposalCreated(gov *abi.ABI, l types.Log) (*ProposalCreated, error) {
	if len(l.Topics) == 0 || l.Topics[0] != GovProposalCreatedId {
		return nil, ErrUnexpectedEvent
	}

	fields, err := gov.Unpack("ProposalCreated", l.Data)
	if err != nil {
		return nil, err
	}

	if len(fields) != 9 {
		return nil, ErrUnexpectedEvent
	}

	ev := &ProposalCreated{
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
	}

	var ok bool

	// id and description are the fields the dashboard relies on, the rest is informational
	if ev.ProposalID, ok = fields[0].(*big.Int); !ok {
		return nil, ErrUnexpectedEvent
	}

	if ev.Description, ok = fields[8].(string); !ok {
		return nil, ErrUnexpectedEvent
	}

	ev.Proposer, _ = fields[1].(common.Address)
	ev.Targets, _ = fields[2].([]common.Address)
	ev.Values, _ = fields[3].([]*big.Int)
	ev.Calldatas, _ = fields[5].([][]byte)
	ev.VoteStart, _ = fields[6].(*big.Int)
	ev.VoteEnd, _ = fields[7].(*big.Int)

	return ev, nil
}
