package governance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrWalletUnavailable = errors.New("wallet unavailable")
	ErrUserRejected      = errors.New("user rejected the request")
	ErrNotConnected      = errors.New("wallet not connected")
	ErrConfiguration     = errors.New("configuration error")
	ErrCallReverted      = errors.New("call reverted")
	ErrNetworkFailure    = errors.New("network failure")

	// ErrBusy is returned when a transaction is already in flight
	ErrBusy = errors.New("another action is pending")
	// ErrInvalidInput is returned when a request fails validation before anything is submitted
	ErrInvalidInput = errors.New("invalid input")

	kinds = []error{
		ErrWalletUnavailable,
		ErrUserRejected,
		ErrNotConnected,
		ErrConfiguration,
		ErrCallReverted,
		ErrNetworkFailure,
		ErrBusy,
		ErrInvalidInput,
	}
)

// Kind returns the sentinel err wraps, or nil if it is unclassified
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}

	return nil
}

// Classify wraps err with the sentinel describing where it came from.
// A locked or undecryptable keystore account means the wallet refused to sign,
// a JSON-RPC error response means the node or the contract rejected the call,
// anything else means the node could not be reached.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if Kind(err) != nil {
		return err
	}

	if errors.Is(err, keystore.ErrLocked) || errors.Is(err, keystore.ErrDecrypt) {
		return fmt.Errorf("%w: %w", ErrUserRejected, err)
	}

	if errors.Is(err, bind.ErrNoCode) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	var rerr rpc.Error
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %w", ErrCallReverted, err)
	}

	if strings.Contains(err.Error(), "execution reverted") {
		return fmt.Errorf("%w: %w", ErrCallReverted, err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
}

// RevertReason extracts the revert data a node attached to a rejected call, if any
func RevertReason(err error) string {
	var derr rpc.DataError
	if !errors.As(err, &derr) {
		return ""
	}

	data, ok := derr.ErrorData().(string)
	if !ok {
		return ""
	}

	b, err := hexutil.Decode(data)
	if err != nil {
		return data
	}

	reason, err := abi.UnpackRevert(b)
	if err != nil {
		return data
	}

	return reason
}
