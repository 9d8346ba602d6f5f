package commands

import (
	"context"
	"fmt"

	"github.com/ruminaider/confcascade/internal/config"
	"github.com/ruminaider/confcascade/internal/handler"
	"github.com/ruminaider/confcascade/internal/org"
	"github.com/ruminaider/confcascade/internal/profiles"
)

type StatusResult struct {
	SignedInAs     string
	Org            org.Serialized
	Active         []profiles.Description
	Organizations  int
	ModelsByRole   map[config.Role][]string
	Errors         []config.ValidationError
	NothingToLoad  bool
	SubmenuContext []string
}

// Status cascades and summarizes the resulting selection and merged config.
func Status(ctx context.Context, h *handler.Handler) (*StatusResult, error) {
	res, err := h.Cascade(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}

	orgs := h.SerializedOrganizations()
	current, err := FindOrg(orgs, h.SelectedOrgID())
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Org:            current,
		Active:         activeProfiles(current),
		Organizations:  len(orgs),
		ModelsByRole:   map[config.Role][]string{},
		Errors:         res.Errors,
		NothingToLoad:  res.ConfigLoadInterrupted,
		SubmenuContext: h.AdditionalSubmenuProviders(),
	}
	if s := h.Session(); s != nil {
		result.SignedInAs = s.AccountLabel
		if result.SignedInAs == "" {
			result.SignedInAs = s.UserID()
		}
	}
	if res.Config != nil {
		for _, role := range config.AllRoles {
			for _, m := range res.Config.ModelsFor(role) {
				result.ModelsByRole[role] = append(result.ModelsByRole[role], m.Title)
			}
		}
	}
	return result, nil
}

// Show cascades and returns the merged config in its transport form.
func Show(ctx context.Context, h *handler.Handler) (config.Result[config.BrowserConfig], error) {
	if _, err := h.Cascade(ctx); err != nil {
		return config.Result[config.BrowserConfig]{}, fmt.Errorf("resolving configuration: %w", err)
	}
	return h.SerializedConfig(ctx), nil
}

func activeProfiles(o org.Serialized) []profiles.Description {
	selected := make(map[string]bool, len(o.SelectedProfileIDs))
	for _, id := range o.SelectedProfileIDs {
		selected[id] = true
	}
	var out []profiles.Description
	for _, p := range o.Profiles {
		if selected[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
