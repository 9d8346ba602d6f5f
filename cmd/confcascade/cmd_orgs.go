package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/ruminaider/confcascade/internal/commands"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/spf13/cobra"
)

var orgSelectProfile string

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List and select organizations",
}

var orgsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations visible to this workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.handler.Cascade(cmd.Context()); err != nil {
			return err
		}
		selected := a.handler.SelectedOrgID()
		for _, o := range a.handler.SerializedOrganizations() {
			marker := " "
			if o.ID == selected {
				marker = "*"
			}
			fmt.Printf("%s %s (%s): %d profile(s), %d selected\n",
				marker, o.Name, o.ID, len(o.Profiles), len(o.SelectedProfileIDs))
		}
		return nil
	},
}

var orgsSelectCmd = &cobra.Command{
	Use:   "select [org]",
	Short: "Select the organization for this workspace",
	Long:  "Select an organization by id, slug or name. Without an argument, choose interactively.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var ref string
		if len(args) == 1 {
			ref = args[0]
		} else {
			if _, err := a.handler.Cascade(cmd.Context()); err != nil {
				return err
			}
			ref, err = pickOrg(a.handler.SerializedOrganizations(), a.handler.SelectedOrgID())
			if err != nil {
				return err
			}
		}

		result, err := commands.SelectOrg(cmd.Context(), a.handler, ref, orgSelectProfile)
		if err != nil {
			return err
		}
		if !result.Changed {
			fmt.Printf("%s is already selected.\n", result.Org.Name)
			return nil
		}
		fmt.Printf("Selected %s with %d profile(s).\n", result.Org.Name, len(result.Org.SelectedProfileIDs))
		printValidationErrors(result.Result.Errors)
		return nil
	},
}

func pickOrg(orgs []org.Serialized, selected string) (string, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return "", errors.New("no organization given and stdin is not a terminal")
	}
	options := make([]huh.Option[string], 0, len(orgs))
	for _, o := range orgs {
		options = append(options, huh.NewOption(o.Name, o.ID))
	}
	choice := selected
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select an organization").
				Options(options...).
				Value(&choice),
		),
	).Run()
	if err != nil {
		return "", err
	}
	return choice, nil
}

func init() {
	orgsSelectCmd.Flags().StringVar(&orgSelectProfile, "profile", "", "Make this profile the only active one in the selected organization")
	orgsCmd.AddCommand(orgsListCmd)
	orgsCmd.AddCommand(orgsSelectCmd)
}
