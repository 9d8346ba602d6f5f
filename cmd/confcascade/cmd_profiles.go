package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/ruminaider/confcascade/internal/commands"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List, select and open profiles of the selected organization",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles of the selected organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.handler.Cascade(cmd.Context()); err != nil {
			return err
		}
		current, err := commands.FindOrg(a.handler.SerializedOrganizations(), a.handler.SelectedOrgID())
		if err != nil {
			return err
		}

		if len(current.Profiles) == 0 {
			fmt.Printf("%s has no profiles.\n", current.Name)
			return nil
		}
		fmt.Printf("%s\n", current.Name)
		for _, p := range current.Profiles {
			marker := " "
			if slices.Contains(current.SelectedProfileIDs, p.ID) {
				marker = "*"
			}
			fmt.Printf("%s %s [%s] %s\n", marker, p.Title, p.Type(), p.URI())
			for _, e := range p.Errors {
				fmt.Printf("    ⚠️  %s\n", e.Error())
			}
		}
		return nil
	},
}

var profilesSelectCmd = &cobra.Command{
	Use:   "select [profile...]",
	Short: "Select the active profiles by id or title",
	Long: "Select the active profiles of the selected organization by id or title. " +
		"Unknown profiles are ignored. Without arguments, choose interactively.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		refs := args
		if len(refs) == 0 {
			if _, err := a.handler.Cascade(cmd.Context()); err != nil {
				return err
			}
			current, err := commands.FindOrg(a.handler.SerializedOrganizations(), a.handler.SelectedOrgID())
			if err != nil {
				return err
			}
			refs, err = pickProfiles(current)
			if err != nil {
				return err
			}
		}

		result, err := commands.SelectProfiles(cmd.Context(), a.handler, refs)
		if err != nil {
			return err
		}
		for _, ref := range result.Unknown {
			fmt.Printf("  ? %s not found in %s, ignored\n", ref, result.Org.Name)
		}
		if len(result.Selected) == 0 {
			fmt.Println("No profiles selected.")
			return nil
		}
		fmt.Printf("Selected %d profile(s) in %s.\n", len(result.Selected), result.Org.Name)
		printValidationErrors(result.Result.Errors)
		return nil
	},
}

var profilesOpenCmd = &cobra.Command{
	Use:   "open <profile>",
	Short: "Open a profile's source file or page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return commands.OpenProfile(cmd.Context(), a.handler, args[0])
	},
}

func pickProfiles(o org.Serialized) ([]string, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return nil, errors.New("no profiles given and stdin is not a terminal")
	}
	options := make([]huh.Option[string], 0, len(o.Profiles))
	for _, p := range o.Profiles {
		options = append(options, huh.NewOption(p.Title, p.ID).Selected(slices.Contains(o.SelectedProfileIDs, p.ID)))
	}
	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(fmt.Sprintf("Select profiles for %s:", o.Name)).
				Description("Space to toggle, Enter to confirm").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, err
	}
	return selected, nil
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesSelectCmd)
	profilesCmd.AddCommand(profilesOpenCmd)
}
