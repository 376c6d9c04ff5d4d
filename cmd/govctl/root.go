package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/citizenwallet/govdash/internal/app"
	"github.com/citizenwallet/govdash/internal/config"
	"github.com/citizenwallet/govdash/internal/dispatch"
	"github.com/citizenwallet/govdash/internal/metrics"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagEnv        = "env"
	flagPassphrase = "passphrase"
	flagDebug      = "debug"
)

// NewRootCmd returns the govctl command with every subcommand attached
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "govctl",
		Short:         "Inspect and operate the DAO governance contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagEnv, "", "path to .env file")
	root.PersistentFlags().String(flagPassphrase, "", "keystore passphrase")
	root.PersistentFlags().Bool(flagDebug, false, "enable debug logging")

	root.AddCommand(
		NewProposalsCmd(),
		NewProposeCmd(),
		NewVoteCmd(),
		NewQueueCmd(),
		NewExecuteCmd(),
		NewMintCmd(),
		NewDelegateCmd(),
		NewGrantRoleCmd(),
		NewIsAdminCmd(),
		NewKeygenCmd(),
	)

	return root
}

// session is an App built from the configuration of the command
type session struct {
	app    *app.App
	roles  map[string]common.Hash
	logger *zap.Logger
	close  func()
}

func newSession(cmd *cobra.Command) (*session, error) {
	env, _ := cmd.Flags().GetString(flagEnv)
	debug, _ := cmd.Flags().GetBool(flagDebug)

	logger := zap.NewNop()
	if debug {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := config.New(ctx, env, logger)
	if err != nil {
		return nil, err
	}

	roles, err := conf.Roles()
	if err != nil {
		return nil, err
	}

	a, closeApp, err := app.FromConfig(ctx, conf, logger, metrics.New(nil))
	if err != nil {
		return nil, err
	}

	return &session{
		app:    a,
		roles:  roles,
		logger: logger,
		close: func() {
			closeApp()
			_ = logger.Sync()
		},
	}, nil
}

// connect unlocks the configured wallet
func (s *session) connect(cmd *cobra.Command) error {
	passphrase, _ := cmd.Flags().GetString(flagPassphrase)

	_, err := s.app.Connect(cmd.Context(), passphrase)
	return err
}

// runAction connects, builds the request and dispatches it, blocking until the
// transaction is confirmed
func runAction(cmd *cobra.Command, build func(s *session) (dispatch.Request, error)) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.connect(cmd); err != nil {
		return err
	}

	req, err := build(s)
	if err != nil {
		return err
	}

	res, err := s.app.Do(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s confirmed: %s\n", res.Action, res.TxHash.Hex())
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
