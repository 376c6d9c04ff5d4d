package governance

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/citizenwallet/govdash/internal/app"
	com "github.com/citizenwallet/govdash/internal/common"
	"github.com/citizenwallet/govdash/internal/dispatch"
	gov "github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// App is the part of the application state the handlers drive
type App interface {
	Snapshot() app.State
	Connect(ctx context.Context, passphrase string) (gov.Identity, error)
	Disconnect() error
	Refresh(ctx context.Context) error
	CheckAdmin(ctx context.Context) (bool, error)
	Submit(ctx context.Context, req dispatch.Request) (*dispatch.Pending, error)
}

type Service struct {
	app   App
	roles map[string]common.Hash
}

func NewService(a App, roles map[string]common.Hash) *Service {
	return &Service{
		app:   a,
		roles: roles,
	}
}

type actionResponse struct {
	Action gov.Action `json:"action"`
	TxHash string     `json:"tx_hash,omitempty"`
	Status gov.Status `json:"status"`
}

type connectResponse struct {
	Identity gov.Identity `json:"identity"`
	IsAdmin  bool         `json:"is_admin"`
}

// GetState godoc
//
//	@Summary	Fetch the dashboard state
//	@Tags		governance
//	@Produce	json
//	@Success	200	{object}	common.Response
//	@Router		/api/state [get]
func (s *Service) GetState(w http.ResponseWriter, r *http.Request) {
	err := com.Body(w, s.app.Snapshot(), nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetProposals godoc
//
//	@Summary		Fetch proposals
//	@Description	get the proposals of the last refresh, optionally filtered by state
//	@Tags			governance
//	@Produce		json
//	@Param			state	query		string	false	"Proposal state"
//	@Success		200		{object}	common.Response
//	@Failure		400
//	@Router			/api/proposals [get]
func (s *Service) GetProposals(w http.ResponseWriter, r *http.Request) {
	props := s.app.Snapshot().Proposals

	if q := r.URL.Query().Get("state"); q != "" {
		state, err := gov.ProposalStateFromString(q)
		if err != nil {
			com.Error(w, fmt.Errorf("%w: %w", gov.ErrInvalidInput, err))
			return
		}

		props = com.Filter(props, func(p gov.Proposal) bool {
			return p.State == state
		})
	}

	err := com.BodyMultiple(w, props, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// RefreshProposals godoc
//
//	@Summary	Rebuild the proposal list from the chain
//	@Tags		governance
//	@Produce	json
//	@Success	200	{object}	common.Response
//	@Failure	502
//	@Router		/api/proposals/refresh [post]
func (s *Service) RefreshProposals(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Refresh(r.Context()); err != nil {
		com.Error(w, err)
		return
	}

	err := com.BodyMultiple(w, s.app.Snapshot().Proposals, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Connect godoc
//
//	@Summary	Connect the wallet
//	@Tags		wallet
//	@Accept		json
//	@Produce	json
//	@Param		passphrase	body		string	false	"Keystore passphrase"
//	@Success	200			{object}	common.Response
//	@Failure	403
//	@Failure	503
//	@Router		/api/connect [post]
func (s *Service) Connect(w http.ResponseWriter, r *http.Request) {
	v, err := com.ReadValues(r)
	if err != nil {
		com.Error(w, err)
		return
	}

	id, err := s.app.Connect(r.Context(), v.Get("passphrase"))
	if err != nil {
		com.Error(w, err)
		return
	}

	err = com.Body(w, connectResponse{Identity: id, IsAdmin: s.app.Snapshot().IsAdmin}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Disconnect godoc
//
//	@Summary	Forget the connected identity
//	@Tags		wallet
//	@Success	200
//	@Failure	401
//	@Router		/api/disconnect [post]
func (s *Service) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Disconnect(); err != nil {
		com.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// IsAdmin godoc
//
//	@Summary	Check the admin role of the connected identity
//	@Tags		wallet
//	@Produce	json
//	@Success	200	{object}	common.Response
//	@Failure	401
//	@Router		/api/roles/admin [get]
func (s *Service) IsAdmin(w http.ResponseWriter, r *http.Request) {
	ok, err := s.app.CheckAdmin(r.Context())
	if err != nil {
		com.Error(w, err)
		return
	}

	err = com.Body(w, map[string]bool{"is_admin": ok}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetAction godoc
//
//	@Summary	Fetch the status of the current action
//	@Tags		actions
//	@Produce	json
//	@Success	200	{object}	common.Response
//	@Router		/api/action [get]
func (s *Service) GetAction(w http.ResponseWriter, r *http.Request) {
	err := com.Body(w, s.app.Snapshot().Action, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Propose godoc
//
//	@Summary		Create a proposal
//	@Description	either a certificate proposal or raw targets, values and calldatas
//	@Tags			actions
//	@Accept			json
//	@Produce		json
//	@Success		202	{object}	common.Response
//	@Failure		400
//	@Failure		401
//	@Failure		409
//	@Router			/api/proposals [post]
func (s *Service) Propose(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		v, err := com.ReadValues(r)
		if err != nil {
			return dispatch.Request{}, err
		}
		return ParseProposeRequest(v)
	})
}

// Vote godoc
//
//	@Summary	Vote on an active proposal
//	@Tags		actions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Proposal id"
//	@Param		support	body		int		true	"0 against, 1 for"
//	@Success	202		{object}	common.Response
//	@Router		/api/proposals/{id}/votes [post]
func (s *Service) Vote(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		v, err := com.ReadValues(r)
		if err != nil {
			return dispatch.Request{}, err
		}
		return ParseVoteRequest(chi.URLParam(r, "id"), v)
	})
}

// Queue godoc
//
//	@Summary	Queue a succeeded proposal
//	@Tags		actions
//	@Param		id	path		string	true	"Proposal id"
//	@Success	202	{object}	common.Response
//	@Router		/api/proposals/{id}/queue [post]
func (s *Service) Queue(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		return ParseQueueRequest(chi.URLParam(r, "id"))
	})
}

// Execute godoc
//
//	@Summary	Execute a queued proposal
//	@Tags		actions
//	@Param		id	path		string	true	"Proposal id"
//	@Success	202	{object}	common.Response
//	@Router		/api/proposals/{id}/execute [post]
func (s *Service) Execute(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		return ParseExecuteRequest(chi.URLParam(r, "id"))
	})
}

// Mint godoc
//
//	@Summary	Mint governance tokens
//	@Tags		actions
//	@Accept		json
//	@Success	202	{object}	common.Response
//	@Router		/api/token/mint [post]
func (s *Service) Mint(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		v, err := com.ReadValues(r)
		if err != nil {
			return dispatch.Request{}, err
		}
		return ParseMintRequest(v)
	})
}

// Delegate godoc
//
//	@Summary	Delegate voting power
//	@Tags		actions
//	@Accept		json
//	@Success	202	{object}	common.Response
//	@Router		/api/token/delegate [post]
func (s *Service) Delegate(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		v, err := com.ReadValues(r)
		if err != nil {
			return dispatch.Request{}, err
		}
		return ParseDelegateRequest(v, s.app.Snapshot().Identity)
	})
}

// GrantRole godoc
//
//	@Summary	Grant a timelock role
//	@Tags		actions
//	@Accept		json
//	@Success	202	{object}	common.Response
//	@Router		/api/roles/grant [post]
func (s *Service) GrantRole(w http.ResponseWriter, r *http.Request) {
	s.handleAction(w, r, func(r *http.Request) (dispatch.Request, error) {
		v, err := com.ReadValues(r)
		if err != nil {
			return dispatch.Request{}, err
		}
		return ParseGrantRoleRequest(v, s.roles)
	})
}

// handleAction submits the parsed request. With ?wait=true it blocks until the
// action settles, otherwise it answers 202 as soon as the action started.
func (s *Service) handleAction(w http.ResponseWriter, r *http.Request, parse func(r *http.Request) (dispatch.Request, error)) {
	req, err := parse(r)
	if err != nil {
		com.Error(w, err)
		return
	}

	p, err := s.app.Submit(r.Context(), req)
	if err != nil {
		com.Error(w, err)
		return
	}

	if !wantsWait(r) {
		err = com.BodyWithStatus(w, http.StatusAccepted, actionResponse{Action: req.Action, Status: s.app.Snapshot().Action}, nil)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	var res dispatch.Result
	select {
	case <-p.Done():
		res, err = p.Wait()
	case <-r.Context().Done():
		// the transaction keeps going, the client can poll /api/action
		return
	}

	if err != nil {
		com.Error(w, err)
		return
	}

	err = com.Body(w, actionResponse{Action: res.Action, TxHash: res.TxHash.Hex(), Status: s.app.Snapshot().Action}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func wantsWait(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("wait")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
