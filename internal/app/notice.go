package app

import (
	"errors"

	"github.com/citizenwallet/govdash/pkg/governance"
)

// noticeFor turns err into the message shown to the user
func noticeFor(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, governance.ErrWalletUnavailable):
		return "No wallet available. Configure a private key or keystore."
	case errors.Is(err, governance.ErrUserRejected):
		return "The wallet rejected the request."
	case errors.Is(err, governance.ErrNotConnected):
		return "Connect a wallet first."
	case errors.Is(err, governance.ErrBusy):
		return "Another transaction is still pending."
	case errors.Is(err, governance.ErrCallReverted):
		if reason := governance.RevertReason(err); reason != "" {
			return "Transaction reverted: " + reason
		}
		return "Transaction reverted: " + err.Error()
	case errors.Is(err, governance.ErrNetworkFailure):
		return "Network error: " + err.Error()
	}

	return err.Error()
}
