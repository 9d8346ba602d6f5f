package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruminaider/confcascade/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("full assistant", func(t *testing.T) {
		input := []byte(`name: Team Assistant
version: 1.2.0
models:
  - name: gpt-x
    provider: openai
    model: gpt-4o
    roles: [chat, edit]
  - name: tab
    provider: ollama
    model: qwen2.5-coder
    roles: [autocomplete]
rules:
  - Prefer table-driven tests
settings:
  temperature: 0.2
`)
		cfg, errs := config.Parse(input)
		require.NotNil(t, cfg)
		assert.Empty(t, errs)
		assert.Equal(t, "Team Assistant", cfg.Name)
		assert.Equal(t, "1.2.0", cfg.Version)
		require.Len(t, cfg.ModelsFor(config.RoleChat), 1)
		assert.Equal(t, "gpt-x", cfg.ModelsFor(config.RoleChat)[0].Title)
		assert.Len(t, cfg.ModelsFor(config.RoleEdit), 1)
		require.Len(t, cfg.ModelsFor(config.RoleAutocomplete), 1)
		assert.Equal(t, "tab", cfg.ModelsFor(config.RoleAutocomplete)[0].Title)
		assert.Equal(t, []string{"Prefer table-driven tests"}, cfg.Rules)
		assert.Equal(t, 0.2, cfg.Settings["temperature"])
	})

	t.Run("model without roles gets defaults", func(t *testing.T) {
		cfg, errs := config.Parse([]byte(`models:
  - name: m
    provider: anthropic
    model: claude
`))
		require.NotNil(t, cfg)
		assert.Empty(t, errs)
		for _, r := range config.DefaultRoles {
			assert.Len(t, cfg.ModelsFor(r), 1, "role %s", r)
		}
		assert.Empty(t, cfg.ModelsFor(config.RoleAutocomplete))
	})

	t.Run("invalid models are non-fatal", func(t *testing.T) {
		cfg, errs := config.Parse([]byte(`models:
  - provider: openai
  - name: no-provider
  - name: bad-role
    provider: openai
    roles: [dance]
  - name: ok
    provider: openai
    roles: [chat, dance]
`))
		require.NotNil(t, cfg)
		require.Len(t, errs, 4)
		assert.False(t, config.HasFatal(errs))
		assert.Equal(t, "models[0]", errs[0].Path)
		chat := cfg.ModelsFor(config.RoleChat)
		require.Len(t, chat, 1)
		assert.Equal(t, "ok", chat[0].Title)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, errs := config.Parse([]byte(""))
		require.NotNil(t, cfg)
		assert.Empty(t, errs)
		assert.Empty(t, cfg.ModelsFor(config.RoleChat))
	})

	t.Run("invalid yaml is fatal", func(t *testing.T) {
		cfg, errs := config.Parse([]byte(`{{{`))
		assert.Nil(t, cfg)
		require.Len(t, errs, 1)
		assert.True(t, errs[0].Fatal)
	})

	t.Run("non-mapping root is fatal", func(t *testing.T) {
		cfg, errs := config.Parse([]byte("- a\n- b\n"))
		assert.Nil(t, cfg)
		assert.True(t, config.HasFatal(errs))
	})
}

func TestClone(t *testing.T) {
	orig := &config.Config{Name: "a", Rules: []string{"r1"}}
	orig.AddModel(config.Model{Title: "m1", Provider: "p", Roles: []config.Role{config.RoleChat}})

	c := orig.Clone()
	c.AddModel(config.Model{Title: "m2", Provider: "p", Roles: []config.Role{config.RoleChat}})
	c.Rules = append(c.Rules, "r2")

	assert.Len(t, orig.ModelsFor(config.RoleChat), 1)
	assert.Equal(t, []string{"r1"}, orig.Rules)
	assert.Len(t, c.ModelsFor(config.RoleChat), 2)

	var nilCfg *config.Config
	assert.Nil(t, nilCfg.Clone())
}

type stubProvider struct {
	desc config.ContextProviderDescription
}

func (s stubProvider) Describe() config.ContextProviderDescription { return s.desc }

func (s stubProvider) Provide(context.Context, string) ([]config.ContextItem, error) {
	return nil, nil
}

func TestToBrowserResult(t *testing.T) {
	cfg := &config.Config{Name: "a", Version: "1"}
	cfg.AddModel(config.Model{Title: "m", Provider: "openai", Model: "gpt", APIBase: "https://secret", Roles: []config.Role{config.RoleChat}})
	cfg = cfg.WithContextProviders([]config.ContextProvider{
		stubProvider{desc: config.ContextProviderDescription{Title: "jira", Kind: config.ContextProviderSubmenu}},
	})

	out := config.ToBrowserResult(config.LoadResult{Config: cfg, Errors: []config.ValidationError{{Message: "x"}}})
	require.NotNil(t, out.Config)
	assert.Equal(t, []config.BrowserModel{{Title: "m", Provider: "openai", Model: "gpt"}}, out.Config.ModelsByRole[config.RoleChat])
	require.Len(t, out.Config.ContextProviders, 1)
	assert.Equal(t, "jira", out.Config.ContextProviders[0].Title)
	assert.Len(t, out.Errors, 1)

	empty := config.ToBrowserResult(config.Interrupted[config.Config]())
	assert.Nil(t, empty.Config)
	assert.True(t, empty.ConfigLoadInterrupted)
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults when file missing", func(t *testing.T) {
		s, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultSettings(), s)
	})

	t.Run("file and env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`controlplane:
  api_url: http://localhost:9000
store:
  backend: sqlite
watch:
  debounce: 1s
`), 0644))
		t.Setenv("CONFCASCADE_LOG_LEVEL", "debug")

		s, err := config.LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000", s.ControlPlane.APIURL)
		assert.Equal(t, "https://hub.confcascade.dev", s.ControlPlane.AppURL)
		assert.Equal(t, "sqlite", s.Store.Backend)
		assert.Equal(t, time.Second, s.Watch.Debounce)
		assert.Equal(t, "debug", s.Log.Level)
	})
}
