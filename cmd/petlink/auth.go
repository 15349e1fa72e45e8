package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"petlink/internal/app"
	"petlink/pkg/domain"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			return a.Login(cmd.Context(), args[0], password)
		},
	}
}

func newRegisterCmd(c *cli) *cobra.Command {
	var (
		email    string
		role     string
		andLogin bool
	)
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			if andLogin {
				return a.RegisterAndLogin(cmd.Context(), args[0], email, password, domain.UserRole(role))
			}
			return a.Register(cmd.Context(), args[0], email, password, domain.UserRole(role))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOwner), "owner or petsitter")
	cmd.Flags().BoolVar(&andLogin, "login", false, "log in right after registering")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			a.Logout(cmd.Context())
			printSuccess(cmd.ErrOrStderr(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.client(cmd)
			if err != nil {
				return err
			}
			if !a.Session().Active() {
				return errNotLoggedIn
			}
			if err := a.RehydrateProfile(cmd.Context()); err != nil && !app.IsSilent(err) {
				return err
			}
			return printSession(cmd.OutOrStdout(), a.Session())
		},
	}
}

func printSession(w io.Writer, sess app.Session) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "User:\t%s (id %d)\n", sess.Username, sess.UserID)
	if sess.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", sess.Email)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", sess.Role)
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(tw, "Token expires:\t%s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

var errNotLoggedIn = errors.New("not logged in, run: petlink login <username>")
