package profiles

import (
	"context"

	"github.com/ruminaider/confcascade/internal/config"
)

// PlatformBundle is an assistant published on the platform, already
// resolved by the remote service.
type PlatformBundle struct {
	Result      config.LoadResult
	OwnerSlug   string
	PackageSlug string
	IconURL     string
	RawYAML     string
}

// PlatformLoader serves a pre-resolved platform bundle.
type PlatformLoader struct {
	bundle     PlatformBundle
	orgScopeID string
	desc       Description
}

// NewPlatformLoader returns a loader for bundle listed under orgScopeID
// ("" for the personal scope).
func NewPlatformLoader(bundle PlatformBundle, orgScopeID string) *PlatformLoader {
	version := "latest"
	title := bundle.OwnerSlug + "/" + bundle.PackageSlug
	if c := bundle.Result.Config; c != nil {
		if c.Version != "" {
			version = c.Version
		}
		if c.Name != "" {
			title = c.Name
		}
	}
	loc := Platform{
		OwnerSlug:   bundle.OwnerSlug,
		PackageSlug: bundle.PackageSlug,
		VersionSlug: version,
	}
	return &PlatformLoader{
		bundle:     bundle,
		orgScopeID: orgScopeID,
		desc: Description{
			ID:       loc.URI(),
			Title:    title,
			IconURL:  bundle.IconURL,
			Location: loc,
			Errors:   bundle.Result.Errors,
		},
	}
}

func (l *PlatformLoader) Description() Description {
	return l.desc
}

// OrgScopeID returns the organization the bundle was listed under.
func (l *PlatformLoader) OrgScopeID() string {
	return l.orgScopeID
}

// RawYAML returns the bundle source for display or editing.
func (l *PlatformLoader) RawYAML() string {
	return l.bundle.RawYAML
}

// Load returns a copy of the pre-resolved result.
func (l *PlatformLoader) Load(context.Context) config.LoadResult {
	res := l.bundle.Result
	res.Config = res.Config.Clone()
	res.Errors = append([]config.ValidationError{}, res.Errors...)
	res.ConfigLoadInterrupted = false
	return res
}
