package contracts

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

//go:embed abi/*.json
var abiFiles embed.FS

const (
	// GovProposalCreated emitted by the governor for every new proposal
	GovProposalCreated = "ProposalCreated(uint256,address,address[],uint256[],string[],bytes[],uint256,uint256,string)"
)

var (
	GovProposalCreatedId = crypto.Keccak256Hash([]byte(GovProposalCreated))
)

func makeGovTopics() (topics [][]common.Hash) {
	topics = [][]common.Hash{
		{GovProposalCreatedId},
	}
	return
}

// ABIs holds the parsed interface descriptors of the four governance contracts
type ABIs struct {
	Token      *abi.ABI
	Timelock   *abi.ABI
	CertIssuer *abi.ABI
	Governor   *abi.ABI
}

var (
	loadOnce sync.Once
	loaded   *ABIs
	loadErr  error
)

// Load parses the embedded ABIs once
func Load() (*ABIs, error) {
	loadOnce.Do(func() {
		loaded, loadErr = load()
	})

	return loaded, loadErr
}

func load() (*ABIs, error) {
	tok, err := extractContractABI("abi/GovToken.json")
	if err != nil {
		return nil, err
	}

	tl, err := extractContractABI("abi/TimeLock.json")
	if err != nil {
		return nil, err
	}

	cert, err := extractContractABI("abi/Cert.json")
	if err != nil {
		return nil, err
	}

	gov, err := extractContractABI("abi/MyGovernor.json")
	if err != nil {
		return nil, err
	}

	return &ABIs{
		Token:      tok,
		Timelock:   tl,
		CertIssuer: cert,
		Governor:   gov,
	}, nil
}

// extractContractABI reads the "abi" member of a hardhat artifact
func extractContractABI(jsonFile string) (*abi.ABI, error) {
	contractBytes, err := abiFiles.ReadFile(jsonFile)
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err = json.Unmarshal(contractBytes, &m); err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(strings.NewReader(string(m["abi"])))
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
