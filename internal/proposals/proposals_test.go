package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type mockEvent struct {
	block uint64
	id    int64
	desc  string
}

type mockGovernor struct {
	mu sync.Mutex

	latest uint64
	events []mockEvent
	states map[string]uint64
	delays map[string]time.Duration

	queries  [][2]*uint64
	stateErr error
}

func (m *mockGovernor) LatestBlock(ctx context.Context) (uint64, error) {
	return m.latest, nil
}

func (m *mockGovernor) ProposalCreated(ctx context.Context, from uint64, to *uint64) ([]*contracts.ProposalCreated, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := from
	m.queries = append(m.queries, [2]*uint64{&f, to})

	evs := []*contracts.ProposalCreated{}
	for _, e := range m.events {
		if e.block < from || (to != nil && e.block > *to) {
			continue
		}

		evs = append(evs, &contracts.ProposalCreated{
			ProposalID:  big.NewInt(e.id),
			Proposer:    common.HexToAddress("0xAbCd000000000000000000000000000000000001"),
			Description: e.desc,
			VoteStart:   big.NewInt(int64(e.block + 1)),
			VoteEnd:     big.NewInt(int64(e.block + 100)),
			BlockNumber: e.block,
		})
	}

	return evs, nil
}

func (m *mockGovernor) State(ctx context.Context, id *big.Int) (uint64, error) {
	if m.stateErr != nil {
		return 0, m.stateErr
	}

	if d, ok := m.delays[id.String()]; ok {
		time.Sleep(d)
	}

	return m.states[id.String()], nil
}

func TestListScenario(t *testing.T) {
	gov := &mockGovernor{
		latest: 10,
		events: []mockEvent{{block: 3, id: 7, desc: "Issue cert #104"}},
		states: map[string]uint64{"7": 0},
	}

	props, err := NewLister(0, 0, 4, nil, nil).List(context.Background(), gov)
	require.NoError(t, err)
	require.Len(t, props, 1)

	require.Equal(t, "7", props[0].ID)
	require.Equal(t, "Issue cert #104", props[0].Description)
	require.Equal(t, governance.ProposalStatePending, props[0].State)
	require.Equal(t, "0xabcd000000000000000000000000000000000001", props[0].Proposer)
	require.Equal(t, uint64(4), props[0].VoteStart)

	b, err := json.Marshal(props[0])
	require.NoError(t, err)
	require.Contains(t, string(b), `"id":"7","description":"Issue cert #104","state":"Pending"`)
}

func TestListStateMapping(t *testing.T) {
	gov := &mockGovernor{latest: 100, states: map[string]uint64{}}
	for i := int64(0); i < 10; i++ {
		gov.events = append(gov.events, mockEvent{block: uint64(i), id: i + 1, desc: "p"})
		gov.states[big.NewInt(i+1).String()] = uint64(i)
	}

	props, err := NewLister(0, 0, 3, nil, nil).List(context.Background(), gov)
	require.NoError(t, err)
	require.Len(t, props, 10)

	expected := []governance.ProposalState{
		governance.ProposalStatePending,
		governance.ProposalStateActive,
		governance.ProposalStateCanceled,
		governance.ProposalStateDefeated,
		governance.ProposalStateSucceeded,
		governance.ProposalStateQueued,
		governance.ProposalStateExpired,
		governance.ProposalStateExecuted,
		governance.ProposalStateUnknown,
		governance.ProposalStateUnknown,
	}

	for i, p := range props {
		require.Equal(t, expected[i], p.State, "proposal %s", p.ID)
	}
}

func TestListKeepsEventOrder(t *testing.T) {
	gov := &mockGovernor{
		latest: 50,
		events: []mockEvent{
			{block: 1, id: 300, desc: "first"},
			{block: 2, id: 100, desc: "second"},
			{block: 3, id: 200, desc: "third"},
		},
		states: map[string]uint64{"300": 1, "100": 4, "200": 5},
		delays: map[string]time.Duration{
			"300": 30 * time.Millisecond,
			"100": 15 * time.Millisecond,
		},
	}

	props, err := NewLister(0, 0, 3, nil, nil).List(context.Background(), gov)
	require.NoError(t, err)
	require.Len(t, props, 3)

	require.Equal(t, "300", props[0].ID)
	require.Equal(t, "first", props[0].Description)
	require.Equal(t, "100", props[1].ID)
	require.Equal(t, "200", props[2].ID)
}

func TestListIsIdempotent(t *testing.T) {
	gov := &mockGovernor{
		latest: 20,
		events: []mockEvent{{block: 1, id: 1, desc: "a"}, {block: 9, id: 2, desc: "b"}},
		states: map[string]uint64{"1": 1, "2": 7},
	}

	l := NewLister(0, 4, 2, nil, nil)

	first, err := l.List(context.Background(), gov)
	require.NoError(t, err)

	second, err := l.List(context.Background(), gov)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestListPaginates(t *testing.T) {
	gov := &mockGovernor{
		latest: 25,
		events: []mockEvent{
			{block: 4, id: 1, desc: "too early"},
			{block: 10, id: 2, desc: "a"},
			{block: 14, id: 3, desc: "b"},
			{block: 25, id: 4, desc: "c"},
		},
		states: map[string]uint64{"2": 1, "3": 1, "4": 1},
	}

	props, err := NewLister(10, 5, 2, nil, nil).List(context.Background(), gov)
	require.NoError(t, err)
	require.Len(t, props, 3)
	require.Equal(t, "2", props[0].ID)
	require.Equal(t, "4", props[2].ID)

	require.Len(t, gov.queries, 4)
	require.Equal(t, uint64(10), *gov.queries[0][0])
	require.Equal(t, uint64(14), *gov.queries[0][1])
	require.Equal(t, uint64(25), *gov.queries[3][0])
	require.Equal(t, uint64(25), *gov.queries[3][1])
}

func TestListStartAfterLatest(t *testing.T) {
	gov := &mockGovernor{latest: 5}

	props, err := NewLister(10, 5, 2, nil, nil).List(context.Background(), gov)
	require.NoError(t, err)
	require.Empty(t, props)
	require.Empty(t, gov.queries)
}

func TestListStateFailure(t *testing.T) {
	gov := &mockGovernor{
		latest:   5,
		events:   []mockEvent{{block: 1, id: 1, desc: "a"}},
		stateErr: errors.New("dial tcp: connection refused"),
	}

	_, err := NewLister(0, 0, 2, nil, nil).List(context.Background(), gov)
	require.ErrorIs(t, err, governance.ErrNetworkFailure)
}

func TestWindows(t *testing.T) {
	require.Nil(t, Windows(0, 10, 0))
	require.Nil(t, Windows(11, 10, 5))

	require.Equal(t, []Window{{From: 3, To: 3}}, Windows(3, 3, 5))
	require.Equal(t, []Window{{From: 0, To: 4}, {From: 5, To: 9}, {From: 10, To: 10}}, Windows(0, 10, 5))
	require.Equal(t, []Window{{From: 0, To: 9}}, Windows(0, 9, 10))

	for _, tc := range []struct{ from, to, rate uint64 }{
		{0, 100, 7},
		{42, 1000, 1},
		{5, 6, 100},
	} {
		ws := Windows(tc.from, tc.to, tc.rate)
		require.Equal(t, tc.from, ws[0].From)
		require.Equal(t, tc.to, ws[len(ws)-1].To)

		for i := 1; i < len(ws); i++ {
			require.Equal(t, ws[i-1].To+1, ws[i].From)
			require.LessOrEqual(t, ws[i].To-ws[i].From+1, tc.rate)
		}
	}
}
