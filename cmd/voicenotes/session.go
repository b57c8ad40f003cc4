package main

import (
	"errors"
	"fmt"

	"voicenote-service/internal/models"

	"github.com/spf13/cobra"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in locally and print an API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			session, token, err := a.sessions.Login(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s>\n", session.Name, session.Email)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the part of the email before @)")
	return cmd
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Logout(cmd.Context(), nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.sessions.Current()
			if errors.Is(err, models.ErrNotSignedIn) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", session.Name, session.Email)
			return nil
		},
	}
}
