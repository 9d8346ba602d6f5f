package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ruminaider/confcascade/internal/paths"
)

// Workspace is the local side of configuration discovery: the workspace
// root directories, the assistants found under them, and the global
// default assistant.
type Workspace struct {
	dirs       []string
	globalPath string
}

// New returns a Workspace rooted at dirs. With no dirs the current
// directory is the single root.
func New(dirs []string, globalPath string) *Workspace {
	return &Workspace{dirs: dirs, globalPath: globalPath}
}

// Dirs returns the absolute workspace root directories. It is recomputed
// on every call.
func (w *Workspace) Dirs(ctx context.Context) ([]string, error) {
	dirs := w.dirs
	if len(dirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving workspace: %w", err)
		}
		dirs = []string{wd}
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("resolving workspace dir %q: %w", d, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// GlobalConfigPath returns the path of the global default assistant.
func (w *Workspace) GlobalConfigPath() string {
	return w.globalPath
}

// AssistantFiles returns every *.yaml and *.yml file directly under each
// workspace root's assistants directory, sorted by name within a root.
// Roots without an assistants directory contribute nothing.
func (w *Workspace) AssistantFiles(ctx context.Context) ([]string, error) {
	dirs, err := w.Dirs(ctx)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := listAssistants(paths.AssistantsDir(d))
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// WatchPaths returns the directories whose changes can alter discovery:
// the global config directory and each root's .confcascade and
// assistants directories.
func (w *Workspace) WatchPaths(ctx context.Context) ([]string, error) {
	dirs, err := w.Dirs(ctx)
	if err != nil {
		return nil, err
	}
	out := []string{filepath.Dir(w.globalPath)}
	for _, d := range dirs {
		assistants := paths.AssistantsDir(d)
		out = append(out, filepath.Dir(assistants), assistants)
	}
	return out, nil
}

func listAssistants(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading assistants dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
