package org

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/ruminaider/confcascade/internal/profiles"
	"golang.org/x/sync/errgroup"
)

// Resolver produces the ordered list of organizations visible to a
// session, each populated with its candidate profiles.
type Resolver struct {
	directory Directory
	local     LocalSource
	logger    *slog.Logger
}

// NewResolver returns a Resolver. directory may be nil, in which case
// every session resolves as unauthenticated.
func NewResolver(directory Directory, local LocalSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{directory: directory, local: local, logger: logger}
}

// Resolve returns the organizations visible to userID. Without a user id,
// or when the organization listing fails, the result is the personal
// organization with local profiles only. Otherwise remote organizations
// come first in listing order and the personal organization last.
//
// Profiles within an organization are ordered platform first, then local.
// Returned CurrentProfiles are empty; selection is applied separately.
func (r *Resolver) Resolve(ctx context.Context, userID string) []*WithProfiles {
	if userID == "" || r.directory == nil {
		return []*WithProfiles{r.LocalOrg(ctx)}
	}

	descs, err := r.directory.ListOrganizations(ctx)
	if err != nil {
		r.logger.Warn("listing organizations failed, using local profiles only", "error", err)
		return []*WithProfiles{r.LocalOrg(ctx)}
	}

	// Discovered once and shared by every org: each org still gets its own
	// manager instances.
	workspaceFiles := r.workspaceFiles(ctx)

	orgs := make([]*WithProfiles, len(descs)+1)
	listErrs := make([]error, len(descs)+1)

	var g errgroup.Group
	for i, desc := range descs {
		g.Go(func() error {
			hub, err := r.platformProfiles(ctx, desc.ID)
			listErrs[i] = err
			orgs[i] = &WithProfiles{
				Description: desc,
				Profiles:    append(hub, workspaceProfiles(workspaceFiles)...),
			}
			return nil
		})
	}
	g.Go(func() error {
		hub, err := r.platformProfiles(ctx, "")
		listErrs[len(descs)] = err
		profs := append(hub, r.globalProfile())
		orgs[len(descs)] = &WithProfiles{
			Description: Personal,
			Profiles:    append(profs, workspaceProfiles(workspaceFiles)...),
		}
		return nil
	})
	_ = g.Wait()

	var errs *multierror.Error
	for _, err := range listErrs {
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		r.logger.Warn("listing assistants failed for some organizations", "error", err)
	}

	return orgs
}

// LocalOrg returns the personal organization with local profiles only:
// the global default followed by workspace assistants.
func (r *Resolver) LocalOrg(ctx context.Context) *WithProfiles {
	profs := []*profiles.LifecycleManager{r.globalProfile()}
	profs = append(profs, workspaceProfiles(r.workspaceFiles(ctx))...)
	return &WithProfiles{Description: Personal, Profiles: profs}
}

func (r *Resolver) globalProfile() *profiles.LifecycleManager {
	return profiles.NewLifecycleManager(profiles.NewGlobalLoader(r.local.GlobalConfigPath()))
}

func (r *Resolver) workspaceFiles(ctx context.Context) []string {
	files, err := r.local.AssistantFiles(ctx)
	if err != nil {
		r.logger.Warn("discovering workspace assistants failed", "error", err)
		return nil
	}
	return files
}

func workspaceProfiles(files []string) []*profiles.LifecycleManager {
	out := make([]*profiles.LifecycleManager, 0, len(files))
	for _, f := range files {
		out = append(out, profiles.NewLifecycleManager(profiles.NewWorkspaceLoader(f)))
	}
	return out
}

// platformProfiles lists the assistants under orgScopeID. On failure it
// returns no profiles and the error, so the org still resolves with its
// local profiles.
func (r *Resolver) platformProfiles(ctx context.Context, orgScopeID string) ([]*profiles.LifecycleManager, error) {
	bundles, err := r.directory.ListAssistants(ctx, orgScopeID)
	if err != nil {
		scope := orgScopeID
		if scope == "" {
			scope = PersonalID
		}
		return nil, fmt.Errorf("listing assistants for %q: %w", scope, err)
	}
	out := make([]*profiles.LifecycleManager, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, profiles.NewLifecycleManager(profiles.NewPlatformLoader(b, orgScopeID)))
	}
	return out, nil
}
