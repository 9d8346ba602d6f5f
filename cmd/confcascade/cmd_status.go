package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ruminaider/confcascade/internal/commands"
	"github.com/ruminaider/confcascade/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the selected organization, active profiles and merged models",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := commands.Status(cmd.Context(), a.handler)
		if err != nil {
			return err
		}

		if result.SignedInAs != "" {
			fmt.Printf("Signed in as %s\n", result.SignedInAs)
		} else {
			fmt.Println("Not signed in (local profiles only)")
		}
		fmt.Printf("Organization: %s (%d available)\n", result.Org.Name, result.Organizations)
		fmt.Println()

		if len(result.Active) == 0 {
			fmt.Println("No profiles selected.")
		} else {
			fmt.Println("ACTIVE PROFILES")
			for _, p := range result.Active {
				fmt.Printf("  ✓ %s [%s]\n", p.Title, p.Type())
			}
		}
		fmt.Println()

		if result.NothingToLoad {
			return nil
		}
		for _, role := range config.AllRoles {
			if models := result.ModelsByRole[role]; len(models) > 0 {
				fmt.Printf("%-13s %s\n", role+":", strings.Join(models, ", "))
			}
		}
		if len(result.SubmenuContext) > 0 {
			fmt.Printf("\nContext submenus: %s\n", strings.Join(result.SubmenuContext, ", "))
		}
		printValidationErrors(result.Errors)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := commands.Show(cmd.Context(), a.handler)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func printValidationErrors(errs []config.ValidationError) {
	if len(errs) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("VALIDATION")
	for _, e := range errs {
		mark := "⚠️ "
		if e.Fatal {
			mark = "✗"
		}
		fmt.Printf("  %s %s\n", mark, e.Error())
	}
}
