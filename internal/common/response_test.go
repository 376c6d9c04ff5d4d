package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{governance.ErrNotConnected, http.StatusUnauthorized, "not_connected"},
		{governance.ErrUserRejected, http.StatusForbidden, "user_rejected"},
		{governance.ErrBusy, http.StatusConflict, "busy"},
		{fmt.Errorf("%w: bad", governance.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("%w: %w", governance.ErrCallReverted, errors.New("execution reverted")), http.StatusUnprocessableEntity, "call_reverted"},
		{governance.ErrWalletUnavailable, http.StatusServiceUnavailable, "wallet_unavailable"},
		{governance.ErrNetworkFailure, http.StatusBadGateway, "network_failure"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			require.Equal(t, tt.status, StatusFor(tt.err))
			require.Equal(t, tt.kind, KindName(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, Error(w, governance.ErrBusy))

	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		ResponseType ResponseType `json:"response_type"`
		Object       ErrorObject  `json:"object"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, ResponseTypeError, body.ResponseType)
	require.Equal(t, "busy", body.Object.Kind)
}

func TestBody(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, BodyMultiple(w, []string{"a"}, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"response_type":"array","array":["a"]}`, w.Body.String())
}
