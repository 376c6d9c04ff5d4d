package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/citizenwallet/govdash/pkg/governance"
)

type ResponseType string

const (
	ResponseTypeObject ResponseType = "object"
	ResponseTypeArray  ResponseType = "array"
	ResponseTypeError  ResponseType = "error"
)

// Response is the default response object
type Response struct {
	ResponseType ResponseType `json:"response_type"`
	Object       any          `json:"object,omitempty"`
	Array        any          `json:"array,omitempty"`
	Meta         any          `json:"meta,omitempty"`
}

type ErrorObject struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func Body(w http.ResponseWriter, body any, meta any) error {
	return write(w, http.StatusOK, &Response{
		ResponseType: ResponseTypeObject,
		Object:       body,
		Meta:         meta,
	})
}

// BodyWithStatus is Body with a status code other than 200
func BodyWithStatus(w http.ResponseWriter, status int, body any, meta any) error {
	return write(w, status, &Response{
		ResponseType: ResponseTypeObject,
		Object:       body,
		Meta:         meta,
	})
}

func BodyMultiple(w http.ResponseWriter, body any, meta any) error {
	return write(w, http.StatusOK, &Response{
		ResponseType: ResponseTypeArray,
		Array:        body,
		Meta:         meta,
	})
}

// Error writes err with the status code of its kind
func Error(w http.ResponseWriter, err error) error {
	return write(w, StatusFor(err), &Response{
		ResponseType: ResponseTypeError,
		Object: ErrorObject{
			Kind:    KindName(err),
			Message: err.Error(),
			Reason:  governance.RevertReason(err),
		},
	})
}

func write(w http.ResponseWriter, status int, r *Response) error {
	b, err := json.Marshal(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)

	return nil
}

// StatusFor maps an error kind to an http status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, governance.ErrNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, governance.ErrUserRejected):
		return http.StatusForbidden
	case errors.Is(err, governance.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, governance.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, governance.ErrCallReverted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, governance.ErrWalletUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, governance.ErrNetworkFailure):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func KindName(err error) string {
	switch governance.Kind(err) {
	case governance.ErrWalletUnavailable:
		return "wallet_unavailable"
	case governance.ErrUserRejected:
		return "user_rejected"
	case governance.ErrNotConnected:
		return "not_connected"
	case governance.ErrConfiguration:
		return "configuration"
	case governance.ErrCallReverted:
		return "call_reverted"
	case governance.ErrNetworkFailure:
		return "network_failure"
	case governance.ErrBusy:
		return "busy"
	case governance.ErrInvalidInput:
		return "invalid_input"
	}

	return "internal"
}
