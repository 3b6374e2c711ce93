package slots

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

// ResolvedComponent pairs a loaded component with the identity and settings
// it renders under.
type ResolvedComponent struct {
	PluginID  string
	Slot      string
	Settings  json.RawMessage
	Component plugin.Component
}

// Resolver computes the ordered list of active components for
// (slot, viewer, entity). Resolution is query-like: it mutates nothing
// beyond the loader's module cache, and for fixed inputs (installations,
// registry, overrides) it always yields the same ordered output.
type Resolver struct {
	registry  *plugin.Registry
	loader    *Loader
	installs  store.InstallationStore
	overrides store.OverrideStore
	logger    *zap.Logger
}

// NewResolver creates a slot resolver.
func NewResolver(registry *plugin.Registry, loader *Loader, installs store.InstallationStore, overrides store.OverrideStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		registry:  registry,
		loader:    loader,
		installs:  installs,
		overrides: overrides,
		logger:    logger.Named("resolver"),
	}
}

// ResolveSlot returns the active components for a slot in registry
// registration order - never installation order, never map iteration order -
// so the same viewer, entity, and slot always render components in the same
// relative positions.
//
// Resolution is best-effort and never returns an error: anonymous viewers
// get no components (plugins require an account), store failures degrade to
// an empty result, and a plugin that fails to load is skipped while the rest
// of the slot still renders.
func (r *Resolver) ResolveSlot(ctx context.Context, slot, viewer string, entityType plugin.EntityType, entityID string) []ResolvedComponent {
	if slot == "" || viewer == "" {
		return nil
	}

	installs, err := r.installs.ListByUser(ctx, viewer)
	if err != nil {
		r.logger.Warn("Failed to fetch installations, rendering no components",
			zap.String("viewer", viewer),
			zap.Error(err))
		return nil
	}

	enabled := make(map[string]*store.Installation, len(installs))
	for _, inst := range installs {
		if inst.Enabled {
			enabled[inst.PluginID] = inst
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	// An override record, when present, is authoritative: the candidate set
	// is intersected with it, never unioned.
	var override map[string]struct{}
	if entityType != "" && entityID != "" {
		key := store.OverrideKey{UserID: viewer, EntityType: entityType, EntityID: entityID}
		ids, ok, err := r.overrides.Get(ctx, key)
		if err != nil {
			r.logger.Warn("Failed to fetch entity override, rendering no components",
				zap.String("viewer", viewer),
				zap.String("entity", string(entityType)+"/"+entityID),
				zap.Error(err))
			return nil
		}
		if ok {
			override = make(map[string]struct{}, len(ids))
			for _, id := range ids {
				override[id] = struct{}{}
			}
		}
	}

	var resolved []ResolvedComponent
	for _, manifest := range r.registry.GetAll() {
		if !manifest.HasSlot(slot) {
			continue
		}
		inst, ok := enabled[manifest.ID]
		if !ok {
			continue
		}
		if override != nil {
			if _, ok := override[manifest.ID]; !ok {
				continue
			}
		}

		if _, err := r.loader.Load(ctx, manifest.ID); err != nil {
			r.logger.Warn("Skipping plugin that failed to load",
				zap.String("plugin", manifest.ID),
				zap.String("slot", slot),
				zap.Error(err))
			continue
		}
		component := r.loader.GetComponent(manifest.ID, slot)
		if component == nil {
			// Declared in the manifest but not provided by the module.
			r.logger.Warn("Plugin declares slot but provides no component",
				zap.String("plugin", manifest.ID),
				zap.String("slot", slot))
			continue
		}

		resolved = append(resolved, ResolvedComponent{
			PluginID:  manifest.ID,
			Slot:      slot,
			Settings:  inst.Settings,
			Component: component,
		})
	}

	return resolved
}

// RenderSlot resolves a slot and renders each component with per-component
// isolation: a component that errors or panics contributes nothing while the
// rest of the slot still renders. Failures are visible only in logs.
func (r *Resolver) RenderSlot(ctx context.Context, slot, viewer string, entityType plugin.EntityType, entityID string, data any, pageContext map[string]string) []plugin.Rendering {
	components := r.ResolveSlot(ctx, slot, viewer, entityType, entityID)

	out := make([]plugin.Rendering, 0, len(components))
	for _, rc := range components {
		req := plugin.RenderRequest{
			Viewer:      viewer,
			EntityType:  entityType,
			EntityID:    entityID,
			Data:        data,
			Settings:    rc.Settings,
			PageContext: pageContext,
		}

		rendering, err := renderIsolated(ctx, rc.Component, req)
		if err != nil {
			r.logger.Warn("Component render failed",
				zap.String("plugin", rc.PluginID),
				zap.String("slot", slot),
				zap.Error(err))
			continue
		}
		if rendering == nil {
			continue
		}

		rendering.PluginID = rc.PluginID
		rendering.Slot = slot
		out = append(out, *rendering)
	}
	return out
}

// renderIsolated is the failure boundary around a single component render.
func renderIsolated(ctx context.Context, c plugin.Component, req plugin.RenderRequest) (rendering *plugin.Rendering, err error) {
	defer func() {
		if p := recover(); p != nil {
			rendering = nil
			err = fmt.Errorf("component panicked: %v", p)
		}
	}()
	return c.Render(ctx, req)
}
