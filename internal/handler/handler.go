package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/controlplane"
	"github.com/ruminaider/confcascade/internal/merge"
	"github.com/ruminaider/confcascade/internal/metrics"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/profiles"
	"github.com/ruminaider/confcascade/internal/selection"
	"golang.org/x/sync/errgroup"
)

var (
	ErrOrgNotFound     = errors.New("organization not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// Workspace is the local collaborator: it reports the workspace roots and
// discovers local assistants.
type Workspace interface {
	org.LocalSource
	Dirs(ctx context.Context) ([]string, error)
}

// Opener opens a profile's underlying source for the user.
type Opener interface {
	OpenFile(ctx context.Context, path string) error
	OpenURL(ctx context.Context, url string) error
}

// DirectoryFactory builds the remote directory for a session. It is only
// called with a non-nil session.
type DirectoryFactory func(s *controlplane.Session) org.Directory

// Listener receives every merged result produced by a reload.
type Listener func(config.LoadResult)

// Options configures a Handler. Workspace and Store are required.
type Options struct {
	Workspace    Workspace
	Store        selection.Store
	NewDirectory DirectoryFactory
	Session      *controlplane.Session
	Opener       Opener
	// AppURL is the base of platform profile pages.
	AppURL  string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Handler owns the organization list, the current selection, the
// registered context providers and the subscribers. Every mutation of the
// current selection goes through its methods.
type Handler struct {
	workspace    Workspace
	newDirectory DirectoryFactory
	reconciler   *selection.Reconciler
	opener       Opener
	appURL       string
	logger       *slog.Logger
	metrics      *metrics.Metrics

	seq atomic.Uint64

	mu          sync.Mutex
	session     *controlplane.Session
	committed   uint64
	workspaceID string
	orgs        []*org.WithProfiles
	current     *org.WithProfiles
	providers   []config.ContextProvider
	listeners   []Listener
}

// New returns a Handler whose current organization is the personal
// organization holding only the global profile, which is also selected.
// Nothing is read until the first load.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(nil)
	}
	global := profiles.NewLifecycleManager(profiles.NewGlobalLoader(opts.Workspace.GlobalConfigPath()))
	personal := &org.WithProfiles{
		Description:     org.Personal,
		Profiles:        []*profiles.LifecycleManager{global},
		CurrentProfiles: []*profiles.LifecycleManager{global},
	}
	return &Handler{
		workspace:    opts.Workspace,
		newDirectory: opts.NewDirectory,
		reconciler:   selection.NewReconciler(opts.Store, logger),
		opener:       opts.Opener,
		appURL:       strings.TrimRight(opts.AppURL, "/"),
		logger:       logger,
		metrics:      m,
		session:      opts.Session,
		orgs:         []*org.WithProfiles{personal},
		current:      personal,
	}
}

// Cascade re-resolves everything: workspace roots, organizations, the
// selected organization and every organization's profile selection. It
// then reloads, even when nothing changed.
//
// Each cascade takes a sequence number. A cascade that finishes after a
// newer one has committed is discarded and returns Load() instead.
func (h *Handler) Cascade(ctx context.Context) (config.LoadResult, error) {
	seq := h.seq.Add(1)
	log := h.logger.With("cascade", seq, "cascade_id", uuid.NewString())
	log.Debug("cascade started")

	dirs, err := h.workspace.Dirs(ctx)
	if err != nil {
		return config.LoadResult{}, fmt.Errorf("resolving workspace: %w", err)
	}
	workspaceID := selection.WorkspaceID(dirs)

	h.mu.Lock()
	session := h.session
	h.mu.Unlock()

	var directory org.Directory
	userID := ""
	if session != nil {
		userID = session.UserID()
		if h.newDirectory != nil {
			directory = h.newDirectory(session)
		}
	}
	orgs := org.NewResolver(directory, h.workspace, log).Resolve(ctx, userID)

	selected := h.reconciler.ReconcileOrg(workspaceID, orgs)
	for _, o := range orgs {
		h.reconciler.ReconcileProfiles(workspaceID, o)
	}

	h.mu.Lock()
	if seq < h.committed {
		newer := h.committed
		h.mu.Unlock()
		h.metrics.Cascades.WithLabelValues("discarded").Inc()
		log.Info("discarding stale cascade", "committed", newer)
		return h.Load(ctx), nil
	}
	h.committed = seq
	h.workspaceID = workspaceID
	h.orgs = orgs
	h.current = selected
	h.mu.Unlock()

	h.metrics.Cascades.WithLabelValues("committed").Inc()
	h.metrics.Organizations.Set(float64(len(orgs)))
	log.Info("cascade committed",
		"workspace", workspaceID,
		"organizations", len(orgs),
		"org", selected.ID,
		"profiles", strings.Join(selected.CurrentIDs(), ","))

	return h.Reload(ctx), nil
}

// RefreshAll is Cascade for externally triggered refreshes.
func (h *Handler) RefreshAll(ctx context.Context) (config.LoadResult, error) {
	return h.Cascade(ctx)
}

// UpdateSession replaces the control-plane session and cascades. A nil
// session signs out.
func (h *Handler) UpdateSession(ctx context.Context, s *controlplane.Session) (config.LoadResult, error) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
	return h.Cascade(ctx)
}

// Session returns the current control-plane session, or nil.
func (h *Handler) Session() *controlplane.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

// SetSelectedOrg makes orgID the current organization. Selecting the
// current organization does nothing. With a profileID, that profile
// becomes the sole selection; otherwise the persisted selection is
// applied.
func (h *Handler) SetSelectedOrg(ctx context.Context, orgID, profileID string) error {
	h.mu.Lock()
	if h.current.ID == orgID {
		h.mu.Unlock()
		return nil
	}
	idx := slices.IndexFunc(h.orgs, func(o *org.WithProfiles) bool { return o.ID == orgID })
	if idx < 0 {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}
	target := h.orgs[idx]
	h.mu.Unlock()

	workspaceID := h.currentWorkspaceID(ctx)
	var selected []*profiles.LifecycleManager
	if profileID == "" {
		selected = h.reconciler.PersistedProfiles(workspaceID, target)
	}

	h.mu.Lock()
	h.current = target
	if profileID == "" {
		target.CurrentProfiles = selected
	}
	h.mu.Unlock()

	if workspaceID != "" {
		h.reconciler.RememberOrg(workspaceID, orgID)
	}
	h.logger.Info("organization selected", "org", orgID)
	if profileID != "" {
		h.SetSelectedProfiles(ctx, []string{profileID})
		return nil
	}
	if workspaceID != "" {
		h.reconciler.RememberProfiles(workspaceID, orgID, selected)
	}
	h.Reload(ctx)
	return nil
}

// SetSelectedProfiles selects the profiles of the current organization
// with the given ids and reloads. Unknown ids are dropped; unlike a
// cascade, an empty result is kept as is.
func (h *Handler) SetSelectedProfiles(ctx context.Context, ids []string) config.LoadResult {
	h.mu.Lock()
	o := h.current
	selected := selection.ResolveProfiles(o, ids)
	o.CurrentProfiles = selected
	h.mu.Unlock()

	if workspaceID := h.currentWorkspaceID(ctx); workspaceID != "" {
		h.reconciler.RememberProfiles(workspaceID, o.ID, selected)
	}
	h.logger.Info("profiles selected", "org", o.ID, "requested", len(ids), "selected", len(selected))
	return h.Reload(ctx)
}

// currentWorkspaceID returns the workspace id of the last committed
// cascade, computing it when no cascade has committed yet. It returns ""
// if the workspace cannot be resolved.
func (h *Handler) currentWorkspaceID(ctx context.Context) string {
	h.mu.Lock()
	id := h.workspaceID
	h.mu.Unlock()
	if id != "" {
		return id
	}
	dirs, err := h.workspace.Dirs(ctx)
	if err != nil {
		h.logger.Warn("resolving workspace failed, selection not persisted", "error", err)
		return ""
	}
	return selection.WorkspaceID(dirs)
}

// RegisterContextProvider adds p to the providers passed to every load
// and reloads. Providers are never removed.
func (h *Handler) RegisterContextProvider(ctx context.Context, p config.ContextProvider) config.LoadResult {
	h.mu.Lock()
	h.providers = append(h.providers, p)
	h.mu.Unlock()
	return h.Reload(ctx)
}

// AdditionalSubmenuProviders returns the titles of registered submenu
// providers in registration order.
func (h *Handler) AdditionalSubmenuProviders() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var titles []string
	for _, p := range h.providers {
		if d := p.Describe(); d.Kind == config.ContextProviderSubmenu {
			titles = append(titles, d.Title)
		}
	}
	return titles
}

// Subscribe registers l for every future reload.
func (h *Handler) Subscribe(l Listener) {
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
}

// SerializedOrganizations returns the organizations with their profile
// identities and selections, without loaded configs.
func (h *Handler) SerializedOrganizations() []org.Serialized {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]org.Serialized, 0, len(h.orgs))
	for _, o := range h.orgs {
		out = append(out, o.Serialize())
	}
	return out
}

// SelectedOrgID returns the id of the current organization.
func (h *Handler) SelectedOrgID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.ID
}

// Reload drops the cached configs of every profile that is not active,
// loads and merges the active ones, and notifies subscribers.
func (h *Handler) Reload(ctx context.Context) config.LoadResult {
	h.mu.Lock()
	active := slices.Clone(h.current.CurrentProfiles)
	orgs := slices.Clone(h.orgs)
	providers := slices.Clone(h.providers)
	listeners := slices.Clone(h.listeners)
	h.mu.Unlock()

	activeIDs := mapset.NewThreadUnsafeSet[string]()
	for _, p := range active {
		activeIDs.Add(p.ID())
	}
	for _, o := range orgs {
		for _, p := range o.Profiles {
			if !activeIDs.Contains(p.ID()) {
				p.ClearConfig()
			}
		}
	}

	start := time.Now()
	res := loadAll(ctx, active, providers)
	h.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	h.metrics.ActiveProfiles.Set(float64(len(active)))
	h.metrics.Reloads.Inc()
	h.recordErrors(res)

	for _, l := range listeners {
		l(res)
	}
	return res
}

// Load returns the merged config of the active profiles without clearing
// caches or notifying subscribers.
func (h *Handler) Load(ctx context.Context) config.LoadResult {
	h.mu.Lock()
	active := slices.Clone(h.current.CurrentProfiles)
	providers := slices.Clone(h.providers)
	h.mu.Unlock()
	return loadAll(ctx, active, providers)
}

// SerializedConfig is Load projected for transport.
func (h *Handler) SerializedConfig(ctx context.Context) config.Result[config.BrowserConfig] {
	return config.ToBrowserResult(h.Load(ctx))
}

// OpenProfile opens the source of a profile of the current organization:
// the file for local profiles, the profile page for platform ones. An
// empty id does nothing.
func (h *Handler) OpenProfile(ctx context.Context, profileID string) error {
	if profileID == "" {
		return nil
	}
	h.mu.Lock()
	p := h.current.Profile(profileID)
	h.mu.Unlock()
	if p == nil {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	if h.opener == nil {
		return errors.New("no opener configured")
	}

	switch loc := p.Description().Location.(type) {
	case profiles.Local:
		return h.opener.OpenFile(ctx, profiles.PathFromURI(loc.FileURI))
	case profiles.Platform:
		return h.opener.OpenURL(ctx, h.appURL+"/"+loc.OwnerSlug+"/"+loc.PackageSlug)
	default:
		return fmt.Errorf("profile %s has no source to open", profileID)
	}
}

func (h *Handler) recordErrors(res config.LoadResult) {
	for _, e := range res.Errors {
		severity := "warning"
		if e.Fatal {
			severity = "fatal"
		}
		h.metrics.ValidationErrors.WithLabelValues(severity).Inc()
		h.logger.Warn("configuration validation error", "message", e.Message, "path", e.Path, "fatal", e.Fatal)
	}
}

// loadAll loads every active profile concurrently and merges the results
// in selection order. With nothing active it returns the interrupted
// result without touching any loader.
func loadAll(ctx context.Context, active []*profiles.LifecycleManager, providers []config.ContextProvider) config.LoadResult {
	if len(active) == 0 {
		return config.Interrupted[config.Config]()
	}
	results := make([]config.LoadResult, len(active))
	var g errgroup.Group
	for i, p := range active {
		g.Go(func() error {
			results[i] = p.LoadConfig(ctx, providers)
			return nil
		})
	}
	_ = g.Wait()
	return merge.Results(results)
}
