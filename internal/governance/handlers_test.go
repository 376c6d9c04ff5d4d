package governance

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/app/apptest"
	"github.com/citizenwallet/govdash/pkg/contracts"
	gov "github.com/citizenwallet/govdash/pkg/governance"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(a *app.App) http.Handler {
	s := NewService(a, contracts.DefaultRoles())

	cr := chi.NewRouter()
	cr.Get("/api/state", s.GetState)
	cr.Get("/api/proposals", s.GetProposals)
	cr.Post("/api/proposals", s.Propose)
	cr.Post("/api/proposals/refresh", s.RefreshProposals)
	cr.Post("/api/proposals/{id}/votes", s.Vote)
	cr.Post("/api/proposals/{id}/queue", s.Queue)
	cr.Post("/api/proposals/{id}/execute", s.Execute)
	cr.Post("/api/connect", s.Connect)
	cr.Post("/api/disconnect", s.Disconnect)
	cr.Get("/api/roles/admin", s.IsAdmin)
	cr.Post("/api/roles/grant", s.GrantRole)
	cr.Post("/api/token/mint", s.Mint)
	cr.Post("/api/token/delegate", s.Delegate)
	cr.Get("/api/action", s.GetAction)

	return cr
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func waitIdle(t *testing.T, a *app.App) {
	require.Eventually(t, func() bool {
		return a.Snapshot().Action.Phase == gov.PhaseIdle
	}, time.Second, 5*time.Millisecond)
}

func TestProposalsEndpoints(t *testing.T) {
	a := apptest.NewApp(apptest.NewChain(), true)
	defer a.Close()
	h := newTestServer(a)

	w := do(t, h, http.MethodGet, "/api/proposals", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"response_type":"array","array":[]}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/proposals/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Array []gov.Proposal `json:"array"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Array, 3)
	require.Equal(t, "7", body.Array[0].ID)
	require.Equal(t, gov.ProposalStateActive, body.Array[0].State)

	w = do(t, h, http.MethodGet, "/api/proposals?state=Queued", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Array, 1)
	require.Equal(t, "9", body.Array[0].ID)

	w = do(t, h, http.MethodGet, "/api/proposals?state=Sleeping", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConnectWithoutWallet(t *testing.T) {
	a := apptest.NewApp(apptest.NewChain(), false)
	defer a.Close()
	h := newTestServer(a)

	w := do(t, h, http.MethodPost, "/api/connect", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "wallet_unavailable")

	w = do(t, h, http.MethodGet, "/api/state", "")
	require.Contains(t, w.Body.String(), `"connected":false`)
}

func TestActionsRequireConnection(t *testing.T) {
	c := apptest.NewChain()
	a := apptest.NewApp(c, true)
	defer a.Close()
	h := newTestServer(a)

	w := do(t, h, http.MethodPost, "/api/proposals/7/votes", `{"support":1}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/roles/admin", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/api/disconnect", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Empty(t, c.Sent())
}

func TestVoteAndWait(t *testing.T) {
	c := apptest.NewChain()
	a := apptest.NewApp(c, true)
	defer a.Close()
	h := newTestServer(a)

	w := do(t, h, http.MethodPost, "/api/connect", `{"passphrase":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"identity":"0xabcd000000000000000000000000000000000001"`)
	require.Contains(t, w.Body.String(), `"is_admin":true`)

	w = do(t, h, http.MethodPost, "/api/proposals/7/votes?wait=true", `{"support":"for"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"action":"vote"`)
	require.Equal(t, []string{"castVote"}, c.Sent())

	w = do(t, h, http.MethodPost, "/api/proposals/7/votes", `{"support":2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/proposals/abc/queue", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.Len(t, c.Sent(), 1)
}

func TestBusy(t *testing.T) {
	c := apptest.NewChain()
	c.Hold = make(chan struct{})
	a := apptest.NewApp(c, true)
	defer a.Close()
	h := newTestServer(a)

	do(t, h, http.MethodPost, "/api/connect", "")

	w := do(t, h, http.MethodPost, "/api/proposals/9/execute", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	w = do(t, h, http.MethodPost, "/api/token/mint", `{"recipient":"0x0000000000000000000000000000000000000002","amount":"1.5"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	require.Eventually(t, func() bool {
		w := do(t, h, http.MethodGet, "/api/action", "")
		return strings.Contains(w.Body.String(), `"action":"execute"`)
	}, time.Second, 5*time.Millisecond)

	close(c.Hold)
	waitIdle(t, a)

	require.Equal(t, []string{"execute"}, c.Sent())
}

func TestExecuteReverted(t *testing.T) {
	c := apptest.NewChain()
	a := apptest.NewApp(c, true)
	defer a.Close()
	h := newTestServer(a)

	do(t, h, http.MethodPost, "/api/connect", "")
	before := a.Snapshot().Proposals

	c.SendErr = errors.New("execution reverted: TimelockController: operation is not ready")

	w := do(t, h, http.MethodPost, "/api/proposals/7/execute?wait=1", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "call_reverted")

	require.Equal(t, before, a.Snapshot().Proposals)
}

func TestAdminActions(t *testing.T) {
	c := apptest.NewChain()
	a := apptest.NewApp(c, true)
	defer a.Close()
	h := newTestServer(a)

	do(t, h, http.MethodPost, "/api/connect", "")

	w := do(t, h, http.MethodPost, "/api/roles/grant?wait=true", `{"role":"proposer","grantee":"0x0000000000000000000000000000000000000002"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/token/delegate?wait=true", `{}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/proposals?wait=true", `{"cert_id":"104","name":"An","course":"EDP","grade":"A","date":"25th June"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, []string{"grantRole", "delegate", "propose"}, c.Sent())
}
