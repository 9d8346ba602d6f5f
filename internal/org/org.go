package org

import (
	"context"

	"github.com/ruminaider/confcascade/internal/profiles"
)

// PersonalID is the reserved id of the implicit personal organization,
// which always exists.
const PersonalID = "personal"

// Description identifies an organization.
type Description struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug,omitempty"`
	IconURL string `json:"iconUrl"`
}

// Personal is the description of the personal organization.
var Personal = Description{ID: PersonalID, Name: "Personal"}

// IsPersonal reports whether d is the personal organization.
func (d Description) IsPersonal() bool {
	return d.ID == PersonalID
}

// WithProfiles is an organization together with its selectable profiles
// and the subset currently active. CurrentProfiles is always a subset of
// Profiles.
type WithProfiles struct {
	Description
	Profiles        []*profiles.LifecycleManager
	CurrentProfiles []*profiles.LifecycleManager
}

// Profile returns the profile with the given id, or nil.
func (o *WithProfiles) Profile(id string) *profiles.LifecycleManager {
	for _, p := range o.Profiles {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// CurrentIDs returns the ids of the active profiles in order.
func (o *WithProfiles) CurrentIDs() []string {
	ids := make([]string, 0, len(o.CurrentProfiles))
	for _, p := range o.CurrentProfiles {
		ids = append(ids, p.ID())
	}
	return ids
}

// Serialized is the transport-safe projection of WithProfiles. It
// carries identities only, never loaded configs.
type Serialized struct {
	Description
	Profiles           []profiles.Description `json:"profiles"`
	SelectedProfileIDs []string               `json:"selectedProfileIds"`
}

// Serialize projects o.
func (o *WithProfiles) Serialize() Serialized {
	descs := make([]profiles.Description, 0, len(o.Profiles))
	for _, p := range o.Profiles {
		descs = append(descs, p.Description())
	}
	return Serialized{
		Description:        o.Description,
		Profiles:           descs,
		SelectedProfileIDs: o.CurrentIDs(),
	}
}

// Directory is the remote service that lists organizations and their
// published assistants.
type Directory interface {
	ListOrganizations(ctx context.Context) ([]Description, error)
	// ListAssistants lists assistants visible under orgScopeID; "" means
	// assistants with no organization scope.
	ListAssistants(ctx context.Context, orgScopeID string) ([]profiles.PlatformBundle, error)
}

// LocalSource discovers local assistant files.
type LocalSource interface {
	// GlobalConfigPath returns the path of the global default assistant.
	GlobalConfigPath() string
	// AssistantFiles returns the assistant files discovered in the
	// workspace's reserved assistants directories.
	AssistantFiles(ctx context.Context) ([]string, error)
}
