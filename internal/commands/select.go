package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/handler"
	"github.com/ruminaider/confcascade/internal/org"
)

// FindOrg looks up an organization by id, then slug, then name
// (case-insensitive).
func FindOrg(orgs []org.Serialized, ref string) (org.Serialized, error) {
	for _, o := range orgs {
		if o.ID == ref {
			return o, nil
		}
	}
	for _, o := range orgs {
		if o.Slug != "" && o.Slug == ref {
			return o, nil
		}
	}
	for _, o := range orgs {
		if strings.EqualFold(o.Name, ref) {
			return o, nil
		}
	}
	return org.Serialized{}, fmt.Errorf("%w: %s", handler.ErrOrgNotFound, ref)
}

// FindProfiles maps refs (profile ids or titles) to profile ids of o.
// Refs that match nothing are returned in unknown.
func FindProfiles(o org.Serialized, refs []string) (ids, unknown []string) {
	for _, ref := range refs {
		id, ok := findProfile(o, ref)
		if !ok {
			unknown = append(unknown, ref)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unknown
}

func findProfile(o org.Serialized, ref string) (string, bool) {
	for _, p := range o.Profiles {
		if p.ID == ref {
			return p.ID, true
		}
	}
	for _, p := range o.Profiles {
		if strings.EqualFold(p.Title, ref) {
			return p.ID, true
		}
	}
	return "", false
}

type SelectOrgResult struct {
	Org     org.Serialized
	Changed bool
	Result  config.LoadResult
}

// SelectOrg cascades, then makes the organization matching orgRef current.
// A non-empty profileRef becomes the sole active profile.
func SelectOrg(ctx context.Context, h *handler.Handler, orgRef, profileRef string) (*SelectOrgResult, error) {
	if _, err := h.Cascade(ctx); err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}
	target, err := FindOrg(h.SerializedOrganizations(), orgRef)
	if err != nil {
		return nil, err
	}

	profileID := ""
	if profileRef != "" {
		id, ok := findProfile(target, profileRef)
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", handler.ErrProfileNotFound, profileRef, target.Name)
		}
		profileID = id
	}

	changed := h.SelectedOrgID() != target.ID
	if err := h.SetSelectedOrg(ctx, target.ID, profileID); err != nil {
		return nil, err
	}
	if !changed && profileID != "" {
		h.SetSelectedProfiles(ctx, []string{profileID})
		changed = true
	}

	current, err := FindOrg(h.SerializedOrganizations(), target.ID)
	if err != nil {
		return nil, err
	}
	return &SelectOrgResult{Org: current, Changed: changed, Result: h.Load(ctx)}, nil
}

type SelectProfilesResult struct {
	Org      org.Serialized
	Selected []string
	Unknown  []string
	Result   config.LoadResult
}

// SelectProfiles cascades, then activates the profiles of the current
// organization matching refs. Unmatched refs are reported, not fatal;
// matching nothing leaves no profile active.
func SelectProfiles(ctx context.Context, h *handler.Handler, refs []string) (*SelectProfilesResult, error) {
	if _, err := h.Cascade(ctx); err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}
	current, err := FindOrg(h.SerializedOrganizations(), h.SelectedOrgID())
	if err != nil {
		return nil, err
	}

	ids, unknown := FindProfiles(current, refs)
	res := h.SetSelectedProfiles(ctx, ids)

	current, err = FindOrg(h.SerializedOrganizations(), current.ID)
	if err != nil {
		return nil, err
	}
	return &SelectProfilesResult{
		Org:      current,
		Selected: current.SelectedProfileIDs,
		Unknown:  unknown,
		Result:   res,
	}, nil
}

// OpenProfile cascades, then opens the source of the profile matching ref
// in the current organization.
func OpenProfile(ctx context.Context, h *handler.Handler, ref string) error {
	if _, err := h.Cascade(ctx); err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}
	current, err := FindOrg(h.SerializedOrganizations(), h.SelectedOrgID())
	if err != nil {
		return err
	}
	id, ok := findProfile(current, ref)
	if !ok {
		return fmt.Errorf("%w: %s", handler.ErrProfileNotFound, ref)
	}
	return h.OpenProfile(ctx, id)
}
