/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	signupUsername string
	signupEmail    string
	loginEmail     string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		username, err := valueOrPrompt(signupUsername, reader, "Username", out)
		if err != nil {
			return err
		}
		email, err := valueOrPrompt(signupEmail, reader, "Email", out)
		if err != nil {
			return err
		}
		password, err := promptPassword(out)
		if err != nil {
			return err
		}

		s, err := c.Signup(cmd.Context(), username, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Signed up as %s\n", s.User.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		email, err := valueOrPrompt(loginEmail, bufio.NewReader(cmd.InOrStdin()), "Email", out)
		if err != nil {
			return err
		}
		password, err := promptPassword(out)
		if err != nil {
			return err
		}

		s, err := c.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged in as %s\n", s.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		s, err := currentSession(c)
		if err != nil {
			return err
		}
		identity, err := c.Me(cmd.Context(), s)
		if err != nil {
			return loginRequired(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", identity.Username, identity.Email, identity.ID)
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupUsername, "username", "", "account username")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}
