package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/ruminaider/confcascade/internal/commands"
	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/spf13/cobra"
)

var (
	loginToken   string
	loginAccount string
	loginLabel   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the control plane with an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := loginToken
		if token == "" {
			token = os.Getenv("CONFCASCADE_TOKEN")
		}
		if token == "" {
			if !term.IsTerminal(os.Stdin.Fd()) {
				return errors.New("no token given: pass --token or set CONFCASCADE_TOKEN")
			}
			err := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Access token").
						EchoMode(huh.EchoModePassword).
						Value(&token),
				),
			).Run()
			if err != nil {
				return err
			}
		}
		token = strings.TrimSpace(token)

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := commands.Login(cmd.Context(), a.handler, paths.SessionFile(), token, loginAccount, loginLabel)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s.\n", result.UserID)
		fmt.Printf("Organizations: %s\n", strings.Join(result.Organizations, ", "))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and fall back to local profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := commands.Logout(cmd.Context(), a.handler, paths.SessionFile()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token (default: $CONFCASCADE_TOKEN or prompt)")
	loginCmd.Flags().StringVar(&loginAccount, "account", "", "Account id, when the token carries no subject")
	loginCmd.Flags().StringVar(&loginLabel, "label", "", "Display name for the account")
}
