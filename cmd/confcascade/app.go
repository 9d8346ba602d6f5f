package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/controlplane"
	"github.com/ruminaider/confcascade/internal/handler"
	"github.com/ruminaider/confcascade/internal/metrics"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/ruminaider/confcascade/internal/selection"
	"github.com/ruminaider/confcascade/internal/workspace"
)

// app is the wiring shared by every command.
type app struct {
	settings  config.Settings
	logger    *slog.Logger
	store     selection.Store
	workspace *workspace.Workspace
	registry  *prometheus.Registry
	handler   *handler.Handler
}

func newApp() (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(s.Log)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	store, err := selection.Open(s.Store.Backend, storePath(s.Store))
	if err != nil {
		return nil, err
	}

	session, err := controlplane.ReadSession(paths.SessionFile())
	if err != nil {
		logger.Warn("ignoring unreadable session", "error", err)
		session = nil
	}

	ws := workspace.New(s.Workspace.Dirs, paths.GlobalConfigFile())
	reg := prometheus.NewRegistry()
	apiURL := s.ControlPlane.APIURL

	h := handler.New(handler.Options{
		Workspace: ws,
		Store:     store,
		NewDirectory: func(sess *controlplane.Session) org.Directory {
			return controlplane.New(apiURL, sess)
		},
		Session: session,
		Opener:  browserOpener{},
		AppURL:  s.ControlPlane.AppURL,
		Logger:  logger,
		Metrics: metrics.New(reg),
	})

	return &app{
		settings:  s,
		logger:    logger,
		store:     store,
		workspace: ws,
		registry:  reg,
		handler:   h,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings() (config.Settings, error) {
	s, err := config.LoadSettings(settingsPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	if len(workspaceDirs) > 0 {
		s.Workspace.Dirs = workspaceDirs
	}
	if logLevel != "" {
		s.Log.Level = logLevel
	}
	if logFormat != "" {
		s.Log.Format = logFormat
	}
	if storeBackend != "" {
		s.Store.Backend = storeBackend
	}
	return s, nil
}

func newLogger(s config.LogSettings) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", s.Level)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(s.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", s.Format)
	}
}

func storePath(s config.StoreSettings) string {
	if s.Path != "" {
		return s.Path
	}
	if strings.EqualFold(s.Backend, "sqlite") {
		return paths.SelectionsDB()
	}
	return paths.SelectionsFile()
}

type browserOpener struct{}

func (browserOpener) OpenFile(_ context.Context, path string) error {
	return browser.OpenFile(path)
}

func (browserOpener) OpenURL(_ context.Context, url string) error {
	return browser.OpenURL(url)
}
