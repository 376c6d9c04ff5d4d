package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/citizenwallet/govdash/internal/storage"
	"github.com/citizenwallet/govdash/pkg/contracts"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Config struct {
	RPCURL    string `env:"RPC_URL,default=http://localhost:8545"`
	ChainName string `env:"CHAIN_NAME,default=sepolia"`

	// DeploymentPath points to a json file mapping contract names to deployed addresses
	DeploymentPath  string `env:"DEPLOYMENT_PATH"`
	GovTokenAddress string `env:"GOV_TOKEN_ADDRESS"`
	TimeLockAddress string `env:"TIMELOCK_ADDRESS"`
	CertAddress     string `env:"CERT_ADDRESS"`
	GovernorAddress string `env:"GOVERNOR_ADDRESS"`

	GovernorStartBlock uint64 `env:"GOVERNOR_START_BLOCK,default=0"`
	LogRange           uint64 `env:"LOG_RANGE,default=0"`
	StateWorkers       int    `env:"STATE_WORKERS,default=8"`

	AdminRole     string `env:"ROLE_ADMIN"`
	ProposerRole  string `env:"ROLE_PROPOSER"`
	ExecutorRole  string `env:"ROLE_EXECUTOR"`
	CancellerRole string `env:"ROLE_CANCELLER"`

	WalletPrivateKey  string `env:"WALLET_PRIVATE_KEY"`
	WalletKeystoreDir string `env:"WALLET_KEYSTORE_DIR"`
	WalletAccount     string `env:"WALLET_ACCOUNT"`

	APIKey     string `env:"API_KEY"`
	SentryURL  string `env:"SENTRY_URL"`
	DiscordURL string `env:"DISCORD_URL"`
}

// Deployment mirrors the address file written by the contract deploy scripts
type Deployment struct {
	GovToken   string `json:"GovToken"`
	TimeLock   string `json:"TimeLock"`
	Cert       string `json:"Cert"`
	MyGovernor string `json:"MyGovernor"`
}

// Addresses are the validated contract addresses
type Addresses struct {
	Token      common.Address
	Timelock   common.Address
	CertIssuer common.Address
	Governor   common.Address
}

func New(ctx context.Context, envpath string, logger *zap.Logger) (*Config, error) {
	if envpath != "" {
		logger.Info("loading env from file", zap.String("path", envpath))
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DeploymentPath != "" {
		if err := cfg.loadDeployment(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadDeployment fills in every address that was not set through the environment
func (c *Config) loadDeployment() error {
	if !storage.Exists(c.DeploymentPath) {
		return fmt.Errorf("%w: %s not found", governance.ErrConfiguration, c.DeploymentPath)
	}

	b, err := storage.Read(c.DeploymentPath)
	if err != nil {
		return err
	}

	d := &Deployment{}
	err = json.Unmarshal(b, d)
	if err != nil {
		return fmt.Errorf("%w: %w", governance.ErrConfiguration, err)
	}

	if c.GovTokenAddress == "" {
		c.GovTokenAddress = d.GovToken
	}
	if c.TimeLockAddress == "" {
		c.TimeLockAddress = d.TimeLock
	}
	if c.CertAddress == "" {
		c.CertAddress = d.Cert
	}
	if c.GovernorAddress == "" {
		c.GovernorAddress = d.MyGovernor
	}

	return nil
}

// Addresses validates the configured contract addresses. Every malformed
// address is reported, not only the first one.
func (c *Config) Addresses() (*Addresses, error) {
	var errs error

	tok, err := parseAddress("GovToken", c.GovTokenAddress)
	errs = multierr.Append(errs, err)

	tl, err := parseAddress("TimeLock", c.TimeLockAddress)
	errs = multierr.Append(errs, err)

	cert, err := parseAddress("Cert", c.CertAddress)
	errs = multierr.Append(errs, err)

	gov, err := parseAddress("MyGovernor", c.GovernorAddress)
	errs = multierr.Append(errs, err)

	if errs != nil {
		return nil, errs
	}

	return &Addresses{
		Token:      tok,
		Timelock:   tl,
		CertIssuer: cert,
		Governor:   gov,
	}, nil
}

func parseAddress(name, addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %s address %q is malformed", governance.ErrConfiguration, name, addr)
	}

	return common.HexToAddress(addr), nil
}

// Roles returns the role name to role identifier mapping, starting from the
// TimelockController defaults and applying any override from the environment
func (c *Config) Roles() (map[string]common.Hash, error) {
	roles := contracts.DefaultRoles()

	overrides := map[string]string{
		contracts.RoleAdmin:     c.AdminRole,
		contracts.RoleProposer:  c.ProposerRole,
		contracts.RoleExecutor:  c.ExecutorRole,
		contracts.RoleCanceller: c.CancellerRole,
	}

	for name, v := range overrides {
		if v == "" {
			continue
		}

		b, err := hexutil.Decode(v)
		if err != nil || len(b) != common.HashLength {
			return nil, fmt.Errorf("%w: role %s must be a 32 byte hex value", governance.ErrConfiguration, name)
		}

		roles[name] = common.BytesToHash(b)
	}

	return roles, nil
}
