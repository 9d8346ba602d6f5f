package main

import (
	"fmt"
	"os"

	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	settingsPath  string
	workspaceDirs []string
	logLevel      string
	logFormat     string
	storeBackend  string
)

var rootCmd = &cobra.Command{
	Use:   "confcascade",
	Short: "Resolve layered assistant configuration for a workspace",
	Long: "confcascade resolves the organizations and assistant profiles visible to a workspace, " +
		"remembers which ones are selected, and merges the selected profiles into one configuration.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show status
		return statusCmd.RunE(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("confcascade %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", paths.SettingsFile(), "Settings file")
	rootCmd.PersistentFlags().StringSliceVarP(&workspaceDirs, "workspace", "w", nil, "Workspace root directory, repeatable (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Selection store: file, sqlite or memory")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(orgsCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
