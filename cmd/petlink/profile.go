package main

import (
	"github.com/spf13/cobra"

	"petlink/pkg/domain"
)

func newProfileCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit or delete your account",
	}
	cmd.AddCommand(newProfileUpdateCmd(c), newProfileDeleteCmd(c))
	return cmd
}

func newProfileUpdateCmd(c *cli) *cobra.Command {
	var (
		username, email, role string
		changePassword        bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change username, email, role or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.profiledClient(cmd)
			if err != nil {
				return err
			}
			edit := a.ProfileDraft()
			if cmd.Flags().Changed("username") {
				edit.Username = username
			}
			if cmd.Flags().Changed("email") {
				edit.Email = email
			}
			if cmd.Flags().Changed("role") {
				edit.Role = domain.UserRole(role)
			}
			if changePassword {
				if edit.Password, err = c.readPassword("New password: "); err != nil {
					return err
				}
			}
			if _, err := a.SaveProfile(cmd.Context(), edit); err != nil {
				return err
			}
			return printSession(cmd.OutOrStdout(), a.Session())
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&role, "role", "", "owner or petsitter")
	cmd.Flags().BoolVar(&changePassword, "password", false, "prompt for a new password")
	return cmd
}

func newProfileDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete your account; asks for your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			return a.DeleteProfile(cmd.Context(), password)
		},
	}
}
