package commands_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ruminaider/confcascade/internal/commands"
	"github.com/ruminaider/confcascade/internal/controlplane"
	"github.com/ruminaider/confcascade/internal/handler"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/paths"
	"github.com/ruminaider/confcascade/internal/selection"
	"github.com/ruminaider/confcascade/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newControlPlane serves one organization "acme" with two assistants and
// one personal assistant.
func newControlPlane(t *testing.T) *httptest.Server {
	t.Helper()
	assistant := func(owner, pkg, model string) map[string]any {
		return map[string]any{
			"configResult": map[string]any{
				"config": map[string]any{
					"name": pkg,
					"modelsByRole": map[string]any{
						"chat": []map[string]any{{"title": model, "provider": "openai", "model": model}},
					},
				},
				"errors": []any{},
			},
			"ownerSlug":   owner,
			"packageSlug": pkg,
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ide/list-organizations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organizations": []map[string]any{{"id": "acme", "name": "Acme", "slug": "acme"}},
		})
	})
	mux.HandleFunc("/ide/list-assistants", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("organizationId") {
		case "acme":
			_ = json.NewEncoder(w).Encode([]any{
				assistant("acme", "reviewer", "gpt-x"),
				assistant("acme", "writer", "claude"),
			})
		default:
			_ = json.NewEncoder(w).Encode([]any{assistant("me", "scratch", "llama")})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// process builds a handler the way the CLI does, against shared on-disk
// state, as a separate confcascade invocation would.
func process(t *testing.T, srv *httptest.Server, dbPath, wsDir, global, sessionPath string) *handler.Handler {
	t.Helper()
	store, err := selection.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	session, err := controlplane.ReadSession(sessionPath)
	require.NoError(t, err)

	return handler.New(handler.Options{
		Workspace: workspace.New([]string{wsDir}, global),
		Store:     store,
		NewDirectory: func(s *controlplane.Session) org.Directory {
			return controlplane.New(srv.URL, s)
		},
		Session: session,
		AppURL:  srv.URL,
	})
}

func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	srv := newControlPlane(t)
	home := t.TempDir()
	wsDir := filepath.Join(t.TempDir(), "project")
	global := filepath.Join(home, "config.yaml")
	sessionPath := filepath.Join(home, "session.yaml")
	dbPath := filepath.Join(home, "selections.db")

	writeFile(t, global, "name: Mine\nmodels:\n  - name: local-model\n    provider: ollama\n")
	writeFile(t, filepath.Join(paths.AssistantsDir(wsDir), "team.yaml"),
		"name: Team\nmodels:\n  - name: gpt-x\n    provider: openai\n")

	// ---------------------------------------------------------------
	// Step 1: signed out, only the personal organization resolves.
	// ---------------------------------------------------------------
	h := process(t, srv, dbPath, wsDir, global, sessionPath)
	status, err := commands.Status(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, org.PersonalID, status.Org.ID)
	assert.Equal(t, 1, status.Organizations)

	// ---------------------------------------------------------------
	// Step 2: log in; the remote organization is preferred.
	// ---------------------------------------------------------------
	login, err := commands.Login(ctx, h, sessionPath, "token", "user-1", "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Personal"}, login.Organizations)
	assert.Equal(t, "acme", h.SelectedOrgID())

	// ---------------------------------------------------------------
	// Step 3: narrow the selection to one assistant.
	// ---------------------------------------------------------------
	sel, err := commands.SelectProfiles(ctx, h, []string{"acme/writer", "retired"})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/writer"}, sel.Selected)
	assert.Equal(t, []string{"retired"}, sel.Unknown)

	// ---------------------------------------------------------------
	// Step 4: a new process restores session and selection.
	// ---------------------------------------------------------------
	h2 := process(t, srv, dbPath, wsDir, global, sessionPath)
	status, err = commands.Status(ctx, h2)
	require.NoError(t, err)
	assert.Equal(t, "dev", status.SignedInAs)
	assert.Equal(t, "acme", status.Org.ID)
	require.Len(t, status.Active, 1)
	assert.Equal(t, "acme/writer", status.Active[0].ID)
	assert.Equal(t, []string{"claude"}, status.ModelsByRole["chat"])

	// ---------------------------------------------------------------
	// Step 5: switch to personal; its own selection defaults to all.
	// ---------------------------------------------------------------
	switched, err := commands.SelectOrg(ctx, h2, "personal", "")
	require.NoError(t, err)
	assert.True(t, switched.Changed)
	assert.Len(t, switched.Org.SelectedProfileIDs, 3)
	require.NotNil(t, switched.Result.Config)
	assert.Equal(t, "scratch", switched.Result.Config.Name)

	// ---------------------------------------------------------------
	// Step 6: log out; the acme selection is remembered for later.
	// ---------------------------------------------------------------
	require.NoError(t, commands.Logout(ctx, h2, sessionPath))
	assert.Equal(t, org.PersonalID, h2.SelectedOrgID())

	h3 := process(t, srv, dbPath, wsDir, global, sessionPath)
	_, err = commands.Login(ctx, h3, sessionPath, "token", "user-1", "dev")
	require.NoError(t, err)
	assert.Equal(t, org.PersonalID, h3.SelectedOrgID(), "last selected org is restored")
	require.NoError(t, h3.SetSelectedOrg(ctx, "acme", ""))
	status, err = commands.Status(ctx, h3)
	require.NoError(t, err)
	require.Len(t, status.Active, 1)
	assert.Equal(t, "acme/writer", status.Active[0].ID)
}
