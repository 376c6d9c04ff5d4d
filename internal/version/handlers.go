package version

import (
	"net/http"

	"github.com/citizenwallet/govdash/internal/common"
	"github.com/citizenwallet/govdash/pkg/governance"
)

type Service struct {
	chainName string
}

func NewService(chainName string) *Service {
	return &Service{chainName: chainName}
}

type response struct {
	Version string `json:"version"`
	Chain   string `json:"chain,omitempty"`
}

// Current returns the current version of the dashboard
func (s *Service) Current(w http.ResponseWriter, r *http.Request) {
	err := common.Body(w, &response{Version: governance.Version, Chain: s.chainName}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
