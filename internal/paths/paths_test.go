package paths_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/stretchr/testify/assert"
)

func TestConfigDir(t *testing.T) {
	dir := paths.ConfigDir()
	assert.True(t, strings.HasSuffix(dir, ".confcascade"))
}

func TestFilesLiveInConfigDir(t *testing.T) {
	for _, p := range []string{
		paths.GlobalConfigFile(),
		paths.SettingsFile(),
		paths.SessionFile(),
		paths.SelectionsFile(),
		paths.SelectionsDB(),
	} {
		assert.Equal(t, paths.ConfigDir(), filepath.Dir(p))
	}
}

func TestAssistantsDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/work/repo", ".confcascade", "assistants"), paths.AssistantsDir("/work/repo"))
}
