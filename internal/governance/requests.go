package governance

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	com "github.com/citizenwallet/govdash/internal/common"
	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/gateway"
	gov "github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseProposeRequest reads either a certificate proposal (cert_id, name, course, grade, date)
// or a raw proposal (targets, values, calldatas) plus its description
func ParseProposeRequest(v url.Values) (dispatch.Request, error) {
	description := strings.TrimSpace(v.Get("description"))

	if v.Get("cert_id") != "" {
		id, err := com.ParseBigInt("cert_id", v.Get("cert_id"))
		if err != nil {
			return dispatch.Request{}, err
		}

		cert := gateway.Certificate{
			ID:     id,
			Name:   strings.TrimSpace(v.Get("name")),
			Course: strings.TrimSpace(v.Get("course")),
			Grade:  strings.TrimSpace(v.Get("grade")),
			Date:   strings.TrimSpace(v.Get("date")),
		}

		if description == "" {
			description = fmt.Sprintf("Issue cert #%s", id)
		}

		return dispatch.ProposeCertificateRequest(cert, description), nil
	}

	targets := []common.Address{}
	for i, t := range v["targets"] {
		addr, err := com.ParseAddress(fmt.Sprintf("targets[%d]", i), t)
		if err != nil {
			return dispatch.Request{}, err
		}
		targets = append(targets, addr)
	}

	values := []*big.Int{}
	for i, s := range v["values"] {
		n, err := com.ParseBigInt(fmt.Sprintf("values[%d]", i), s)
		if err != nil {
			return dispatch.Request{}, err
		}
		values = append(values, n)
	}

	// values may be left out when no call sends ether
	if len(values) == 0 {
		for range targets {
			values = append(values, big.NewInt(0))
		}
	}

	calldatas := [][]byte{}
	for i, s := range v["calldatas"] {
		b, err := hexutil.Decode(strings.TrimSpace(s))
		if err != nil {
			return dispatch.Request{}, fmt.Errorf("%w: calldatas[%d] is not hex", gov.ErrInvalidInput, i)
		}
		calldatas = append(calldatas, b)
	}

	return dispatch.ProposeRequest(targets, values, calldatas, description), nil
}

// ParseSupport accepts 0, 1, against and for
func ParseSupport(s string) (uint8, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "against":
		return dispatch.SupportAgainst, nil
	case "1", "for":
		return dispatch.SupportFor, nil
	}

	return 0, fmt.Errorf("%w: support must be 0 (against) or 1 (for)", gov.ErrInvalidInput)
}

func ParseVoteRequest(proposalID string, v url.Values) (dispatch.Request, error) {
	id, err := com.ParseBigInt("proposal id", proposalID)
	if err != nil {
		return dispatch.Request{}, err
	}

	support, err := ParseSupport(v.Get("support"))
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.VoteRequest(id, support), nil
}

func ParseQueueRequest(proposalID string) (dispatch.Request, error) {
	id, err := com.ParseBigInt("proposal id", proposalID)
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.QueueRequest(id), nil
}

func ParseExecuteRequest(proposalID string) (dispatch.Request, error) {
	id, err := com.ParseBigInt("proposal id", proposalID)
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.ExecuteRequest(id), nil
}

// ParseMintRequest reads recipient and amount. The amount is in whole tokens, decimals allowed.
func ParseMintRequest(v url.Values) (dispatch.Request, error) {
	to, err := com.ParseAddress("recipient", v.Get("recipient"))
	if err != nil {
		return dispatch.Request{}, err
	}

	amount, err := com.ParseTokenAmount("amount", v.Get("amount"))
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.MintRequest(to, amount), nil
}

// ParseDelegateRequest reads delegatee. An empty delegatee delegates to self.
func ParseDelegateRequest(v url.Values, self gov.Identity) (dispatch.Request, error) {
	delegatee := strings.TrimSpace(v.Get("delegatee"))
	if delegatee == "" {
		if self.IsZero() {
			return dispatch.Request{}, gov.ErrNotConnected
		}
		return dispatch.DelegateRequest(self.Address()), nil
	}

	to, err := com.ParseAddress("delegatee", delegatee)
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.DelegateRequest(to), nil
}

// ParseGrantRoleRequest reads role, either a configured role name or a 32 byte hex id, and grantee
func ParseGrantRoleRequest(v url.Values, roles map[string]common.Hash) (dispatch.Request, error) {
	role, err := ParseRole(v.Get("role"), roles)
	if err != nil {
		return dispatch.Request{}, err
	}

	grantee, err := com.ParseAddress("grantee", v.Get("grantee"))
	if err != nil {
		return dispatch.Request{}, err
	}

	return dispatch.GrantRoleRequest(role, grantee), nil
}

func ParseRole(s string, roles map[string]common.Hash) (common.Hash, error) {
	s = strings.TrimSpace(s)

	name := strings.ToUpper(s)
	if h, ok := roles[name]; ok {
		return h, nil
	}
	if h, ok := roles[name+"_ROLE"]; ok {
		return h, nil
	}

	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: unknown role %q", gov.ErrInvalidInput, s)
	}

	return common.BytesToHash(b), nil
}
