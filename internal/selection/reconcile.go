package selection

import (
	"log/slog"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/profiles"
)

// SelectOrg picks the organization for a workspace. persistedID wins when
// it still resolves; otherwise the first non-personal organization, else
// the first organization. It returns nil only for an empty list.
func SelectOrg(orgs []*org.WithProfiles, persistedID string) *org.WithProfiles {
	if persistedID != "" {
		for _, o := range orgs {
			if o.ID == persistedID {
				return o
			}
		}
	}
	for _, o := range orgs {
		if !o.IsPersonal() {
			return o
		}
	}
	if len(orgs) == 0 {
		return nil
	}
	return orgs[0]
}

// SelectProfiles applies a persisted selection to o. Ids that no longer
// resolve are dropped; if none survive, every profile of o is selected.
func SelectProfiles(o *org.WithProfiles, persisted string) []*profiles.LifecycleManager {
	var selected []*profiles.LifecycleManager
	if persisted != "" {
		selected = ResolveProfiles(o, strings.Split(persisted, Separator))
	}
	if len(selected) == 0 {
		selected = append([]*profiles.LifecycleManager{}, o.Profiles...)
	}
	return selected
}

// ResolveProfiles maps ids to profiles of o in the order given, dropping
// unknown and repeated ids. It may return an empty slice.
func ResolveProfiles(o *org.WithProfiles, ids []string) []*profiles.LifecycleManager {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]*profiles.LifecycleManager, 0, len(ids))
	for _, id := range ids {
		if !seen.Add(id) {
			continue
		}
		if p := o.Profile(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// JoinIDs serializes a profile selection.
func JoinIDs(ps []*profiles.LifecycleManager) string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID())
	}
	return strings.Join(ids, Separator)
}

// Reconciler applies and records persisted selections. Store failures
// never fail a reconcile: reads degrade to "no prior selection" and
// writes are logged and dropped.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// ReconcileOrg selects the organization for workspaceID and re-persists
// the choice even when unchanged.
func (r *Reconciler) ReconcileOrg(workspaceID string, orgs []*org.WithProfiles) *org.WithProfiles {
	selected := SelectOrg(orgs, r.get(OrgNamespace, workspaceID))
	if selected != nil {
		r.RememberOrg(workspaceID, selected.ID)
	}
	return selected
}

// ReconcileProfiles sets o.CurrentProfiles from the persisted selection
// for o in workspaceID and re-persists the result.
func (r *Reconciler) ReconcileProfiles(workspaceID string, o *org.WithProfiles) {
	o.CurrentProfiles = r.PersistedProfiles(workspaceID, o)
	r.RememberProfiles(workspaceID, o.ID, o.CurrentProfiles)
}

// PersistedProfiles applies the persisted selection for o in workspaceID
// without modifying o or writing to the store.
func (r *Reconciler) PersistedProfiles(workspaceID string, o *org.WithProfiles) []*profiles.LifecycleManager {
	return SelectProfiles(o, r.get(ProfileNamespace, ProfileKey(workspaceID, o.ID)))
}

// RememberOrg persists orgID as the selection for workspaceID.
func (r *Reconciler) RememberOrg(workspaceID, orgID string) {
	r.set(OrgNamespace, workspaceID, orgID)
}

// RememberProfiles persists ps as the selection for orgID in workspaceID.
func (r *Reconciler) RememberProfiles(workspaceID, orgID string, ps []*profiles.LifecycleManager) {
	r.set(ProfileNamespace, ProfileKey(workspaceID, orgID), JoinIDs(ps))
}

func (r *Reconciler) get(ns Namespace, key string) string {
	v, _, err := r.store.Get(ns, key)
	if err != nil {
		r.logger.Warn("reading persisted selection failed", "namespace", ns, "key", key, "error", err)
		return ""
	}
	return v
}

func (r *Reconciler) set(ns Namespace, key, value string) {
	if err := r.store.Set(ns, key, value); err != nil {
		r.logger.Warn("persisting selection failed", "namespace", ns, "key", key, "error", err)
	}
}
