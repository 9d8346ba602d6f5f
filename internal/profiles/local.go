package profiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruminaider/confcascade/internal/config"
)

const (
	// GlobalProfileID is the id of the always-present global local profile.
	GlobalProfileID    = "local"
	globalProfileTitle = "Local Config"
)

// LocalLoader loads an assistant document from a file.
type LocalLoader struct {
	path   string
	desc   Description
	global bool
}

// NewGlobalLoader returns the loader for the user's global default
// assistant. A missing file loads as an empty default config.
func NewGlobalLoader(path string) *LocalLoader {
	return &LocalLoader{
		path:   path,
		global: true,
		desc: Description{
			ID:       GlobalProfileID,
			Title:    globalProfileTitle,
			Location: Local{FileURI: FileURI(path)},
		},
	}
}

// NewWorkspaceLoader returns a loader for an assistant file discovered in
// a workspace. Its id is the file URI; its title is the document name,
// or the file name without extension.
func NewWorkspaceLoader(path string) *LocalLoader {
	uri := FileURI(path)
	return &LocalLoader{
		path: path,
		desc: Description{
			ID:       uri,
			Title:    localTitle(path),
			Location: Local{FileURI: uri},
		},
	}
}

func (l *LocalLoader) Description() Description {
	return l.desc
}

// Load reads and parses the file.
func (l *LocalLoader) Load(ctx context.Context) config.LoadResult {
	if err := ctx.Err(); err != nil {
		return config.LoadResult{Errors: []config.ValidationError{{Message: err.Error(), Fatal: true}}}
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if l.global && errors.Is(err, fs.ErrNotExist) {
			return config.LoadResult{Config: &config.Config{Name: l.desc.Title, ModelsByRole: map[config.Role][]config.Model{}}, Errors: []config.ValidationError{}}
		}
		return config.LoadResult{
			Errors: []config.ValidationError{{Path: l.path, Message: fmt.Sprintf("reading assistant: %v", err), Fatal: true}},
		}
	}

	cfg, errs := config.Parse(data)
	if errs == nil {
		errs = []config.ValidationError{}
	}
	if cfg != nil && cfg.Name == "" {
		cfg.Name = l.desc.Title
	}
	return config.LoadResult{Config: cfg, Errors: errs}
}

// FileURI returns the file:// URI for path.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// PathFromURI is the inverse of FileURI. Non-file URIs are returned as-is.
func PathFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

// localTitle peeks at the document name without reporting errors; the
// full parse happens in Load.
func localTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return stem
	}
	cfg, _ := config.Parse(data)
	if cfg == nil || cfg.Name == "" {
		return stem
	}
	return cfg.Name
}
