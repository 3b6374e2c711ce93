// Package slots turns registered plugin manifests into live components and
// resolves which components are active for a given slot, viewer, and entity.
// It owns the process-wide module cache; everything else it touches
// (registry, stores, catalog) is injected.
package slots

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"launchboard/pkg/plugin"
)

// Loader materializes plugin modules from the closed factory table and
// caches them for the process lifetime. Loads are serialized per plugin id:
// the first caller performs the load (and the module's Initialize, exactly
// once per load cycle); concurrent callers for the same id wait for it.
type Loader struct {
	registry  *plugin.Registry
	factories map[string]plugin.Factory
	base      *plugin.Context
	logger    *zap.Logger

	mu      sync.Mutex
	modules map[string]*moduleEntry
}

// moduleEntry is one cache slot. Fields other than once are written only
// inside once.Do; loaded is the publication barrier for readers that skip
// Load (GetComponent).
type moduleEntry struct {
	once       sync.Once
	loaded     atomic.Bool
	module     plugin.Module
	components map[string]plugin.Component
	err        error
}

// NewLoader creates a module loader over a registry and factory table.
func NewLoader(registry *plugin.Registry, factories map[string]plugin.Factory, base *plugin.Context, logger *zap.Logger) *Loader {
	return &Loader{
		registry:  registry,
		factories: factories,
		base:      base,
		logger:    logger.Named("loader"),
		modules:   make(map[string]*moduleEntry),
	}
}

// Load returns the cached module for pluginID, materializing it on first
// use. Unknown ids and initialization failures both surface as
// plugin.ErrPluginNotFound: callers must treat a load failure identically to
// an absent plugin, never as partially initialized. A failed entry is
// evicted so a later Load may retry.
func (l *Loader) Load(ctx context.Context, pluginID string) (plugin.Module, error) {
	manifest, ok := l.registry.GetByID(pluginID)
	if !ok {
		return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrPluginNotFound)
	}

	factory, ok := l.factories[pluginID]
	if !ok || factory == nil {
		l.logger.Warn("Registered plugin has no factory", zap.String("plugin", pluginID))
		return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrPluginNotFound)
	}

	l.mu.Lock()
	entry, ok := l.modules[pluginID]
	if !ok {
		entry = &moduleEntry{}
		l.modules[pluginID] = entry
	}
	l.mu.Unlock()

	entry.once.Do(func() {
		entry.module, entry.components, entry.err = l.build(ctx, manifest, factory)
		if entry.err == nil {
			entry.loaded.Store(true)
		}
	})

	if entry.err != nil {
		l.mu.Lock()
		if l.modules[pluginID] == entry {
			delete(l.modules, pluginID)
		}
		l.mu.Unlock()
		return nil, fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrPluginNotFound)
	}

	return entry.module, nil
}

// build creates and initializes a module and caches its slot components.
func (l *Loader) build(ctx context.Context, manifest *plugin.Manifest, factory plugin.Factory) (plugin.Module, map[string]plugin.Component, error) {
	mod, err := factory(l.base.Named(manifest.ID))
	if err != nil {
		l.logger.Error("Plugin factory failed",
			zap.String("plugin", manifest.ID),
			zap.Error(err))
		return nil, nil, err
	}
	if mod == nil {
		l.logger.Error("Plugin factory returned nil module", zap.String("plugin", manifest.ID))
		return nil, nil, fmt.Errorf("factory returned nil module")
	}

	if init, ok := mod.(plugin.Initializer); ok {
		if err := init.Initialize(ctx); err != nil {
			l.logger.Error("Plugin initialization failed",
				zap.String("plugin", manifest.ID),
				zap.Error(err))
			return nil, nil, err
		}
	}

	components := make(map[string]plugin.Component)
	for _, slot := range manifest.SlotNames() {
		if c := mod.Component(slot); c != nil {
			components[slot] = c
		}
	}

	l.logger.Info("Plugin module loaded",
		zap.String("plugin", manifest.ID),
		zap.Int("components", len(components)))

	return mod, components, nil
}

// GetComponent is an O(1) cache lookup. It returns nil if the module is not
// loaded or does not provide the slot; it never triggers a load.
func (l *Loader) GetComponent(pluginID, slot string) plugin.Component {
	l.mu.Lock()
	entry, ok := l.modules[pluginID]
	l.mu.Unlock()

	if !ok || !entry.loaded.Load() {
		return nil
	}
	return entry.components[slot]
}

// Loaded reports whether a module is currently cached and usable.
func (l *Loader) Loaded(pluginID string) bool {
	l.mu.Lock()
	entry, ok := l.modules[pluginID]
	l.mu.Unlock()
	return ok && entry.loaded.Load()
}

// Unload runs the module's Cleanup hook (if any) and evicts it from the
// cache, so a subsequent Load re-runs Initialize.
func (l *Loader) Unload(ctx context.Context, pluginID string) error {
	l.mu.Lock()
	entry, ok := l.modules[pluginID]
	if ok {
		delete(l.modules, pluginID)
	}
	l.mu.Unlock()

	if !ok || !entry.loaded.Load() {
		return fmt.Errorf("plugin %q: %w", pluginID, plugin.ErrNotLoaded)
	}

	if cleaner, ok := entry.module.(plugin.Cleaner); ok {
		if err := cleaner.Cleanup(ctx); err != nil {
			l.logger.Warn("Plugin cleanup failed",
				zap.String("plugin", pluginID),
				zap.Error(err))
		}
	}

	l.logger.Info("Plugin module unloaded", zap.String("plugin", pluginID))
	return nil
}

// UnloadAll unloads every cached module. Used at shutdown.
func (l *Loader) UnloadAll(ctx context.Context) {
	l.mu.Lock()
	ids := make([]string, 0, len(l.modules))
	for id := range l.modules {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	for _, id := range ids {
		if err := l.Unload(ctx, id); err != nil {
			l.logger.Debug("Skipped unload", zap.String("plugin", id), zap.Error(err))
		}
	}
}
