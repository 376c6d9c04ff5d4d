package main

import (
	"fmt"
	"net/url"

	com "github.com/citizenwallet/govdash/internal/common"
	"github.com/citizenwallet/govdash/internal/dispatch"
	gov "github.com/citizenwallet/govdash/internal/governance"
	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/spf13/cobra"
)

func NewProposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List every proposal with its current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *governance.ProposalState
			if s, _ := cmd.Flags().GetString("state"); s != "" {
				st, err := governance.ProposalStateFromString(s)
				if err != nil {
					return fmt.Errorf("%w: %w", governance.ErrInvalidInput, err)
				}
				filter = &st
			}

			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.app.Refresh(cmd.Context()); err != nil {
				return err
			}

			list := s.app.Snapshot().Proposals
			if filter != nil {
				list = com.Filter(list, func(p governance.Proposal) bool {
					return p.State == *filter
				})
			}

			return printJSON(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().String("state", "", "only show proposals in this state (e.g. Active)")

	return cmd
}

func NewProposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal",
		Long: `Create a proposal. With --cert-id the proposal issues a certificate through the
cert issuer contract, otherwise --target, --value and --calldata describe the calls.

Example:
$ govctl propose --cert-id 104 --name "Ada" --course "Go" --grade "A" --date "2024-01-01"
$ govctl propose --target 0x... --calldata 0x... --description "Fund the treasury"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := proposeValues(cmd)
			if err != nil {
				return err
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return gov.ParseProposeRequest(v)
			})
		},
	}

	cmd.Flags().String("description", "", "proposal description")
	cmd.Flags().String("cert-id", "", "certificate id to issue")
	cmd.Flags().String("name", "", "certificate holder")
	cmd.Flags().String("course", "", "certificate course")
	cmd.Flags().String("grade", "", "certificate grade")
	cmd.Flags().String("date", "", "certificate date")
	cmd.Flags().StringSlice("target", nil, "call target address, repeatable")
	cmd.Flags().StringSlice("value", nil, "wei sent with each call, repeatable")
	cmd.Flags().StringSlice("calldata", nil, "hex calldata of each call, repeatable")

	return cmd
}

// proposeValues maps the propose flags onto the form fields the request parser reads
func proposeValues(cmd *cobra.Command) (url.Values, error) {
	v := url.Values{}

	for flag, field := range map[string]string{
		"description": "description",
		"cert-id":     "cert_id",
		"name":        "name",
		"course":      "course",
		"grade":       "grade",
		"date":        "date",
	} {
		s, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, err
		}
		if s != "" {
			v.Set(field, s)
		}
	}

	for flag, field := range map[string]string{
		"target":   "targets",
		"value":    "values",
		"calldata": "calldatas",
	} {
		ss, err := cmd.Flags().GetStringSlice(flag)
		if err != nil {
			return nil, err
		}
		v[field] = append(v[field], ss...)
	}

	if v.Get("cert_id") == "" && len(v["targets"]) == 0 {
		return nil, fmt.Errorf("%w: either --cert-id or --target is required", governance.ErrInvalidInput)
	}

	return v, nil
}

func NewVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote [proposal-id] [for|against]",
		Short: "Cast a vote on an active proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := gov.ParseVoteRequest(args[0], url.Values{"support": {args[1]}})
			if err != nil {
				return err
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return req, nil
			})
		},
	}
}

func NewQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue [proposal-id]",
		Short: "Queue a succeeded proposal in the timelock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := gov.ParseQueueRequest(args[0])
			if err != nil {
				return err
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return req, nil
			})
		},
	}
}

func NewExecuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "execute [proposal-id]",
		Short: "Execute a queued proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := gov.ParseExecuteRequest(args[0])
			if err != nil {
				return err
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return req, nil
			})
		},
	}
}

func NewMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint [recipient] [amount]",
		Short: "Mint governance tokens, the amount is in whole tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := gov.ParseMintRequest(url.Values{"recipient": {args[0]}, "amount": {args[1]}})
			if err != nil {
				return err
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return req, nil
			})
		},
	}
}

func NewDelegateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delegate [delegatee]",
		Short: "Delegate voting power, to the connected account when no delegatee is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := url.Values{}
			if len(args) == 1 {
				v.Set("delegatee", args[0])
			}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return gov.ParseDelegateRequest(v, s.app.Identity())
			})
		},
	}
}

func NewGrantRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role [role] [grantee]",
		Short: "Grant a timelock role, by name (ADMIN, PROPOSER, EXECUTOR, CANCELLER) or 32 byte hex id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := url.Values{"role": {args[0]}, "grantee": {args[1]}}

			return runAction(cmd, func(s *session) (dispatch.Request, error) {
				return gov.ParseGrantRoleRequest(v, s.roles)
			})
		},
	}
}

func NewIsAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "is-admin",
		Short: "Report whether the configured wallet holds the timelock admin role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.connect(cmd); err != nil {
				return err
			}

			ok, err := s.app.CheckAdmin(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s admin: %t\n", s.app.Identity(), ok)
			return nil
		},
	}
}

func NewKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a private key for WALLET_PRIVATE_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, address, err := governance.GenerateHexPrivateKey()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\n", pk)
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\n", address)
			return nil
		},
	}
}
