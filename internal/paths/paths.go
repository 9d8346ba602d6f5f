package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// ConfigDir returns ~/.confcascade.
func ConfigDir() string {
	return filepath.Join(home(), ".confcascade")
}

// GlobalConfigFile returns ~/.confcascade/config.yaml, the global default assistant.
func GlobalConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SettingsFile returns ~/.confcascade/settings.yaml.
func SettingsFile() string {
	return filepath.Join(ConfigDir(), "settings.yaml")
}

// SessionFile returns ~/.confcascade/session.yaml.
func SessionFile() string {
	return filepath.Join(ConfigDir(), "session.yaml")
}

// SelectionsFile returns ~/.confcascade/selections.yaml.
func SelectionsFile() string {
	return filepath.Join(ConfigDir(), "selections.yaml")
}

// SelectionsDB returns ~/.confcascade/selections.db.
func SelectionsDB() string {
	return filepath.Join(ConfigDir(), "selections.db")
}

// AssistantsDir returns <workspaceDir>/.confcascade/assistants.
func AssistantsDir(workspaceDir string) string {
	return filepath.Join(workspaceDir, ".confcascade", "assistants")
}
