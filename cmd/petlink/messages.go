package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newMessagesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"chat"},
		Short:   "Read and write the chat of an order",
	}
	cmd.AddCommand(newMessagesListCmd(c), newMessagesSendCmd(c), newMessagesDeleteCmd(c))
	return cmd
}

func newMessagesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list <order-id>",
		Short: "Show the chat of an order",
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
			if err := a.SelectOrderByID(cmd.Context(), id); err != nil {
				return err
			}
			return printMessages(cmd.OutOrStdout(), a.Messages())
		},
	}
}

func newMessagesSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send <order-id> <text>...",
		Short: "Post a message to the chat of an order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			if err := a.SelectOrderByID(cmd.Context(), id); err != nil {
				return err
			}
			if _, err := a.SendMessage(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return printMessages(cmd.OutOrStdout(), a.Messages())
		},
	}
}

func newMessagesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <order-id> <message-id>",
		Short: "Delete one of your messages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			msgID, err := parseID(args[1], "message")
			if err != nil {
				return err
			}
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			if err := a.SelectOrderByID(cmd.Context(), orderID); err != nil {
				return err
			}
			return a.DeleteMessage(cmd.Context(), msgID)
		},
	}
}
