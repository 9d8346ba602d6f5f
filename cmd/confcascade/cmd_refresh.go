package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-resolve organizations and profiles and reload the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.handler.RefreshAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Refreshed %d organization(s); %s selected.\n",
			len(a.handler.SerializedOrganizations()), a.handler.SelectedOrgID())
		printValidationErrors(res.Errors)
		return nil
	},
}
