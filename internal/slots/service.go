package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

// Event types emitted on plugin lifecycle changes.
const (
	EventInstalled       = "plugin.installed"
	EventEnabled         = "plugin.enabled"
	EventDisabled        = "plugin.disabled"
	EventSettingsUpdated = "plugin.settings_updated"
	EventUninstalled     = "plugin.uninstalled"
	EventOverrideSet     = "override.set"
	EventOverrideCleared = "override.cleared"
)

// Event is a plugin lifecycle notification.
type Event struct {
	Type       string            `json:"type"`
	Viewer     string            `json:"viewer"`
	PluginID   string            `json:"pluginId,omitempty"`
	EntityType plugin.EntityType `json:"entityType,omitempty"`
	EntityID   string            `json:"entityId,omitempty"`
}

// EventSink receives lifecycle events. Implementations must not block.
type EventSink interface {
	PluginEvent(event Event)
}

// PluginStatus is one row of a plugin listing: the manifest plus the
// viewer's installation state.
type PluginStatus struct {
	Manifest  *plugin.Manifest `json:"manifest"`
	Installed bool             `json:"installed"`
	Enabled   bool             `json:"enabled"`
	Settings  json.RawMessage  `json:"settings,omitempty"`
}

// ErrInvalidEntity is returned when an override targets a malformed entity
// reference.
var ErrInvalidEntity = errors.New("slots: entity type and id are required")

// Service exposes the plugin system's operations to the HTTP boundary:
// listing, the installation lifecycle, entity overrides, and slot
// resolution. Write paths return typed errors the caller must check; read
// paths degrade to empty results instead of failing.
type Service struct {
	registry  *plugin.Registry
	loader    *Loader
	resolver  *Resolver
	installs  store.InstallationStore
	overrides store.OverrideStore
	events    EventSink
	logger    *zap.Logger
}

// NewService wires the plugin service.
func NewService(registry *plugin.Registry, loader *Loader, installs store.InstallationStore, overrides store.OverrideStore, logger *zap.Logger) *Service {
	return &Service{
		registry:  registry,
		loader:    loader,
		resolver:  NewResolver(registry, loader, installs, overrides, logger),
		installs:  installs,
		overrides: overrides,
		logger:    logger.Named("plugins"),
	}
}

// SetEventSink attaches a lifecycle event sink. Nil disables events.
func (s *Service) SetEventSink(sink EventSink) {
	s.events = sink
}

// Resolver returns the slot resolver backed by this service's stores.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) emit(event Event) {
	if s.events != nil {
		s.events.PluginEvent(event)
	}
}

// ListPlugins returns every registered plugin with the viewer's install
// state, in registration order. Anonymous viewers see the catalog with no
// installation state. This is a read path: store failures degrade to
// "nothing installed" rather than an error.
func (s *Service) ListPlugins(ctx context.Context, viewer string) []PluginStatus {
	installed := make(map[string]*store.Installation)
	if viewer != "" {
		list, err := s.installs.ListByUser(ctx, viewer)
		if err != nil {
			s.logger.Warn("Failed to fetch installations for listing",
				zap.String("viewer", viewer),
				zap.Error(err))
		} else {
			for _, inst := range list {
				installed[inst.PluginID] = inst
			}
		}
	}

	manifests := s.registry.GetAll()
	result := make([]PluginStatus, 0, len(manifests))
	for _, m := range manifests {
		status := PluginStatus{Manifest: m}
		if inst, ok := installed[m.ID]; ok {
			status.Installed = true
			status.Enabled = inst.Enabled
			status.Settings = inst.Settings
		}
		result = append(result, status)
	}
	return result
}

// Install upserts an installation for the viewer with enabled=true.
// Re-installing re-enables without clearing settings.
func (s *Service) Install(ctx context.Context, viewer, pluginID string) (*store.Installation, error) {
	if viewer == "" {
		return nil, plugin.ErrUnauthorized
	}
	if _, ok := s.registry.GetByID(pluginID); !ok {
		return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrPluginNotFound)
	}

	inst, err := s.installs.Install(ctx, viewer, pluginID)
	if err != nil {
		return nil, fmt.Errorf("failed to install plugin %q: %w", pluginID, err)
	}

	s.logger.Info("Plugin installed",
		zap.String("viewer", viewer),
		zap.String("plugin", pluginID))
	s.emit(Event{Type: EventInstalled, Viewer: viewer, PluginID: pluginID})

	return inst, nil
}

// SetEnabled toggles an existing installation.
func (s *Service) SetEnabled(ctx context.Context, viewer, pluginID string, enabled bool) (*store.Installation, error) {
	if viewer == "" {
		return nil, plugin.ErrUnauthorized
	}

	inst, err := s.installs.SetEnabled(ctx, viewer, pluginID, enabled)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrNotInstalled)
		}
		return nil, err
	}

	eventType := EventEnabled
	if !enabled {
		eventType = EventDisabled
	}
	s.emit(Event{Type: eventType, Viewer: viewer, PluginID: pluginID})

	return inst, nil
}

// SetSettings merges a settings patch into an existing installation.
func (s *Service) SetSettings(ctx context.Context, viewer, pluginID string, patch json.RawMessage) (*store.Installation, error) {
	if viewer == "" {
		return nil, plugin.ErrUnauthorized
	}

	inst, err := s.installs.MergeSettings(ctx, viewer, pluginID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrNotInstalled)
		}
		return nil, err
	}

	s.emit(Event{Type: EventSettingsUpdated, Viewer: viewer, PluginID: pluginID})
	return inst, nil
}

// Uninstall deletes the installation and, atomically with it, every entity
// override reference the viewer holds for the plugin. The module cache is
// untouched: it is shared across viewers.
func (s *Service) Uninstall(ctx context.Context, viewer, pluginID string) error {
	if viewer == "" {
		return plugin.ErrUnauthorized
	}

	if err := s.installs.Delete(ctx, viewer, pluginID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrNotInstalled)
		}
		return err
	}

	s.logger.Info("Plugin uninstalled",
		zap.String("viewer", viewer),
		zap.String("plugin", pluginID))
	s.emit(Event{Type: EventUninstalled, Viewer: viewer, PluginID: pluginID})

	return nil
}

// SetEntityOverride replaces the override set for one entity wholesale.
// Setting a set equal to everything installed+enabled is deliberately kept
// as a stored record, not collapsed into "no override".
func (s *Service) SetEntityOverride(ctx context.Context, viewer string, entityType plugin.EntityType, entityID string, pluginIDs []string) error {
	if viewer == "" {
		return plugin.ErrUnauthorized
	}
	if !entityType.Valid() || entityType == plugin.EntityGlobal || entityID == "" {
		return ErrInvalidEntity
	}

	key := store.OverrideKey{UserID: viewer, EntityType: entityType, EntityID: entityID}
	if err := s.overrides.Set(ctx, key, pluginIDs); err != nil {
		return fmt.Errorf("failed to set entity override: %w", err)
	}

	s.emit(Event{Type: EventOverrideSet, Viewer: viewer, EntityType: entityType, EntityID: entityID})
	return nil
}

// ClearEntityOverride deletes the override, reverting the entity to
// default-all-enabled behavior.
func (s *Service) ClearEntityOverride(ctx context.Context, viewer string, entityType plugin.EntityType, entityID string) error {
	if viewer == "" {
		return plugin.ErrUnauthorized
	}
	if !entityType.Valid() || entityType == plugin.EntityGlobal || entityID == "" {
		return ErrInvalidEntity
	}

	key := store.OverrideKey{UserID: viewer, EntityType: entityType, EntityID: entityID}
	if err := s.overrides.Clear(ctx, key); err != nil {
		return fmt.Errorf("failed to clear entity override: %w", err)
	}

	s.emit(Event{Type: EventOverrideCleared, Viewer: viewer, EntityType: entityType, EntityID: entityID})
	return nil
}

// GetEntityOverride returns the stored override set and whether one exists.
// Read path: a store failure reads as "no override".
func (s *Service) GetEntityOverride(ctx context.Context, viewer string, entityType plugin.EntityType, entityID string) ([]string, bool) {
	if viewer == "" {
		return nil, false
	}

	key := store.OverrideKey{UserID: viewer, EntityType: entityType, EntityID: entityID}
	ids, ok, err := s.overrides.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to fetch entity override",
			zap.String("viewer", viewer),
			zap.Error(err))
		return nil, false
	}
	return ids, ok
}

// ResolveSlot delegates to the resolver. See Resolver.ResolveSlot.
func (s *Service) ResolveSlot(ctx context.Context, slot, viewer string, entityType plugin.EntityType, entityID string) []ResolvedComponent {
	return s.resolver.ResolveSlot(ctx, slot, viewer, entityType, entityID)
}

// RenderSlot delegates to the resolver. See Resolver.RenderSlot.
func (s *Service) RenderSlot(ctx context.Context, slot, viewer string, entityType plugin.EntityType, entityID string, data any, pageContext map[string]string) []plugin.Rendering {
	return s.resolver.RenderSlot(ctx, slot, viewer, entityType, entityID, data, pageContext)
}
