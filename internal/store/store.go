// Package store persists per-viewer plugin installation state and per-entity
// override sets. The plugin core consumes the two interfaces below; the
// in-process Memory implementation backs both behind a single lock so that
// uninstall cascades are atomic.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"launchboard/pkg/plugin"
)

// Store errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidSettings is returned when a settings patch is not a JSON object.
	ErrInvalidSettings = errors.New("store: settings must be a JSON object")
)

// Installation records that a viewer has added a plugin to their account.
// Identity is the (UserID, PluginID) pair.
type Installation struct {
	UserID      string          `json:"userId"`
	PluginID    string          `json:"pluginId"`
	Enabled     bool            `json:"enabled"`
	Settings    json.RawMessage `json:"settings,omitempty"`
	InstalledAt time.Time       `json:"installedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the installation.
func (i *Installation) Clone() *Installation {
	clone := *i
	if i.Settings != nil {
		clone.Settings = make(json.RawMessage, len(i.Settings))
		copy(clone.Settings, i.Settings)
	}
	return &clone
}

// OverrideKey identifies an entity override record: a per-viewer, per-entity
// narrowing of which installed plugins apply to one entity's page.
type OverrideKey struct {
	UserID     string
	EntityType plugin.EntityType
	EntityID   string
}

// InstallationStore is CRUD over Installation keyed by (userID, pluginID).
type InstallationStore interface {
	// Get returns the installation, or ErrNotFound.
	Get(ctx context.Context, userID, pluginID string) (*Installation, error)

	// ListByUser returns the viewer's installations ordered by install time.
	ListByUser(ctx context.Context, userID string) ([]*Installation, error)

	// Install upserts an installation with Enabled=true. Re-installing an
	// already-installed plugin re-enables it and does not clear settings.
	Install(ctx context.Context, userID, pluginID string) (*Installation, error)

	// SetEnabled toggles the enabled flag on an existing installation.
	// Returns ErrNotFound if the installation does not exist.
	SetEnabled(ctx context.Context, userID, pluginID string, enabled bool) (*Installation, error)

	// MergeSettings applies a top-level-key JSON merge of patch onto the
	// installation's settings. A null value deletes the key.
	// Returns ErrNotFound if the installation does not exist.
	MergeSettings(ctx context.Context, userID, pluginID string, patch json.RawMessage) (*Installation, error)

	// Delete removes the installation and cascades to the viewer's entity
	// overrides: every override set stops referencing pluginID, atomically
	// with the installation delete. Returns ErrNotFound if absent.
	Delete(ctx context.Context, userID, pluginID string) error
}

// OverrideStore is CRUD over per-entity plugin override sets. Absence of a
// record means "no override" (all installed+enabled plugins active);
// presence means the stored set is authoritative.
type OverrideStore interface {
	// Get returns the override set and whether a record exists.
	Get(ctx context.Context, key OverrideKey) (pluginIDs []string, ok bool, err error)

	// Set replaces the override set wholesale (not a merge).
	Set(ctx context.Context, key OverrideKey, pluginIDs []string) error

	// Clear deletes the override, reverting to default-all-enabled behavior.
	// Clearing an absent override is a no-op.
	Clear(ctx context.Context, key OverrideKey) error

	// ListByUser returns all override keys stored for a viewer.
	ListByUser(ctx context.Context, userID string) ([]OverrideKey, error)
}
