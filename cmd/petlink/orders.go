package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"petlink/internal/app"
	"petlink/pkg/domain"
)

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// profiledClient is client plus a profile refresh, for commands whose
// outcome depends on the user's role.
func (c *cli) profiledClient(cmd *cobra.Command) (*app.App, error) {
	a, err := c.client(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.RehydrateProfile(cmd.Context()); err != nil && !app.IsSilent(err) {
		return nil, err
	}
	return a, nil
}

func newOrdersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and manage care orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(c),
		newOrdersShowCmd(c),
		newOrdersCreateCmd(c),
		newOrdersUpdateCmd(c),
		newOrdersDeleteCmd(c),
	)
	return cmd
}

func newOrdersListCmd(c *cli) *cobra.Command {
	var (
		status, from, to, sort string
		skip, limit            int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List orders matching the filters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			if !a.Session().Active() {
				return errNotLoggedIn
			}
			err = a.SetFilters(cmd.Context(), domain.OrderFilters{
				Status:    domain.OrderStatus(status),
				DateFrom:  from,
				DateTo:    to,
				SortOrder: domain.SortOrder(sort),
				Skip:      skip,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), a.Orders())
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "open, in_progress, completed or canceled")
	cmd.Flags().StringVar(&from, "from", "", "only orders starting on or after this date")
	cmd.Flags().StringVar(&to, "to", "", "only orders ending on or before this date")
	cmd.Flags().StringVar(&sort, "sort", string(domain.SortAsc), "asc or desc by start date")
	cmd.Flags().IntVar(&skip, "skip", 0, "orders to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum orders to return")
	return cmd
}

func newOrdersShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			order, err := a.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), order)
		},
	}
}

type orderFlags struct {
	title, description, start, end, status string
}

func (f *orderFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "order title")
	cmd.Flags().StringVar(&f.description, "description", "", "order description")
	cmd.Flags().StringVar(&f.start, "start", "", "start date, e.g. 2024-06-01T10:00")
	cmd.Flags().StringVar(&f.end, "end", "", "end date, e.g. 2024-06-03T18:00")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "open, in_progress, completed or canceled")
	}
}

// apply overwrites the draft fields whose flags were given.
func (f *orderFlags) apply(cmd *cobra.Command, d *domain.OrderDraft) {
	if cmd.Flags().Changed("title") {
		d.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		d.Description = f.description
	}
	if cmd.Flags().Changed("start") {
		d.StartDate = f.start
	}
	if cmd.Flags().Changed("end") {
		d.EndDate = f.end
	}
	if cmd.Flags().Changed("status") {
		d.Status = domain.OrderStatus(f.status)
	}
}

func newOrdersCreateCmd(c *cli) *cobra.Command {
	flags := &orderFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order (owners only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.profiledClient(cmd)
			if err != nil {
				return err
			}
			var draft domain.OrderDraft
			flags.apply(cmd, &draft)
			order, err := a.CreateOrder(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), order)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newOrdersUpdateCmd(c *cli) *cobra.Command {
	flags := &orderFlags{}
	cmd := &cobra.Command{
		Use:   "update <order-id>",
		Short: "Edit an order; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			current, err := a.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			draft := a.EditDraft(current)
			flags.apply(cmd, &draft)
			order, err := a.UpdateOrder(cmd.Context(), id, draft)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), order)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newOrdersDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id>",
		Short: "Delete an order and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			return a.DeleteOrder(cmd.Context(), id)
		},
	}
}
