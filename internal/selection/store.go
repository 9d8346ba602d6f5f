package selection

import (
	"errors"
	"fmt"
	"strings"
)

// Namespace names one of the persisted selection maps.
type Namespace string

const (
	// OrgNamespace maps workspace id to the last selected org id.
	OrgNamespace Namespace = "lastSelectedOrgIdForWorkspace"
	// ProfileNamespace maps profile key to the joined ids of the last
	// selected profiles.
	ProfileNamespace Namespace = "lastSelectedProfileForWorkspace"
)

// Separator joins profile ids in a persisted selection, and workspace id
// and org id in a profile key.
const Separator = ":::"

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown selection store backend")

// Store is a durable key-value store for persisted selections.
// Get reports ok=false for unknown keys.
type Store interface {
	Get(ns Namespace, key string) (value string, ok bool, err error)
	Set(ns Namespace, key, value string) error
	Close() error
}

// Open returns the store for backend ("file", "sqlite" or "memory")
// rooted at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// WorkspaceID identifies a workspace by its root directories.
func WorkspaceID(dirs []string) string {
	return strings.Join(dirs, "&")
}

// ProfileKey is the ProfileNamespace key for orgID in workspaceID.
func ProfileKey(workspaceID, orgID string) string {
	return workspaceID + Separator + orgID
}
