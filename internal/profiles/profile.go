package profiles

import (
	"context"
	"encoding/json"

	"github.com/ruminaider/confcascade/internal/config"
)

// Type distinguishes profiles backed by local files from profiles
// published by the platform.
type Type string

const (
	TypeLocal    Type = "local"
	TypePlatform Type = "platform"
)

// Location says where a profile's source lives. It is either Local or
// Platform.
type Location interface {
	Type() Type
	URI() string
}

// Local is a profile backed by a file on disk.
type Local struct {
	FileURI string
}

func (Local) Type() Type    { return TypeLocal }
func (l Local) URI() string { return l.FileURI }

// Platform is a profile published as a package on the platform.
type Platform struct {
	OwnerSlug   string
	PackageSlug string
	VersionSlug string
}

func (Platform) Type() Type { return TypePlatform }

// URI returns owner/package, which is also the profile id.
func (p Platform) URI() string { return p.OwnerSlug + "/" + p.PackageSlug }

// Description identifies one loadable configuration bundle. ID is unique
// within an organization's profile list.
type Description struct {
	ID       string
	Title    string
	IconURL  string
	Location Location
	Errors   []config.ValidationError
}

// Type returns the profile type of the description's location.
func (d Description) Type() Type {
	if d.Location == nil {
		return TypeLocal
	}
	return d.Location.Type()
}

// URI returns the location URI, or "" when none is known.
func (d Description) URI() string {
	if d.Location == nil {
		return ""
	}
	return d.Location.URI()
}

type descriptionJSON struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	ProfileType Type                     `json:"profileType"`
	URI         string                   `json:"uri,omitempty"`
	IconURL     string                   `json:"iconUrl,omitempty"`
	Errors      []config.ValidationError `json:"errors,omitempty"`
}

// MarshalJSON flattens the location into profileType and uri.
func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptionJSON{
		ID:          d.ID,
		Title:       d.Title,
		ProfileType: d.Type(),
		URI:         d.URI(),
		IconURL:     d.IconURL,
		Errors:      d.Errors,
	})
}

// Loader produces the configuration of one profile.
type Loader interface {
	Description() Description
	Load(ctx context.Context) config.LoadResult
}
