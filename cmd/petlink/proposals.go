package main

import (
	"github.com/spf13/cobra"

	"petlink/pkg/domain"
)

func newProposalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Offer to take care orders and manage offers",
	}
	cmd.AddCommand(
		newProposalsListCmd(c),
		newProposalsCreateCmd(c),
		newProposalsUpdateCmd(c),
		newProposalsDeleteCmd(c),
	)
	return cmd
}

func newProposalsListCmd(c *cli) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			ps, err := a.ListProposals(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			return printProposals(cmd.OutOrStdout(), ps)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "proposals to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum proposals to return")
	return cmd
}

func newProposalsCreateCmd(c *cli) *cobra.Command {
	var price, comment string
	cmd := &cobra.Command{
		Use:   "create <order-id>",
		Short: "Offer to take an order (petsitters only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			a, err := c.profiledClient(cmd)
			if err != nil {
				return err
			}
			p, err := a.CreateProposal(cmd.Context(), orderID, domain.Price(price), comment)
			if err != nil {
				return err
			}
			return printProposals(cmd.OutOrStdout(), []domain.Proposal{p})
		},
	}
	cmd.Flags().StringVar(&price, "price", "", "asking price")
	cmd.Flags().StringVar(&comment, "comment", "", "note for the owner")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProposalsUpdateCmd(c *cli) *cobra.Command {
	var price, comment, status string
	cmd := &cobra.Command{
		Use:   "update <proposal-id>",
		Short: "Change price, comment or status of a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "proposal")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			var patch domain.ProposalPatch
			if cmd.Flags().Changed("price") {
				p := domain.Price(price)
				patch.Price = &p
			}
			if cmd.Flags().Changed("comment") {
				patch.Comment = &comment
			}
			if cmd.Flags().Changed("status") {
				s := domain.ProposalStatus(status)
				patch.Status = &s
			}
			p, err := a.UpdateProposal(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return printProposals(cmd.OutOrStdout(), []domain.Proposal{p})
		},
	}
	cmd.Flags().StringVar(&price, "price", "", "new price")
	cmd.Flags().StringVar(&comment, "comment", "", "new comment")
	cmd.Flags().StringVar(&status, "status", "", "pending, accepted, rejected or canceled")
	return cmd
}

func newProposalsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <proposal-id>",
		Short: "Withdraw a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "proposal")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			return a.DeleteProposal(cmd.Context(), id)
		},
	}
}
