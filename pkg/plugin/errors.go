package plugin

import "errors"

// Plugin system errors.
var (
	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("plugin: manifest is nil")

	// ErrDuplicatePlugin is returned when a manifest id is already
	// registered. The first registration wins; the conflict is non-fatal.
	ErrDuplicatePlugin = errors.New("plugin: id already registered")

	// ErrPluginNotFound is returned when a plugin id is not in the registry
	// or its module cannot be materialized. Callers must treat a load
	// failure identically to an absent plugin.
	ErrPluginNotFound = errors.New("plugin: not found")

	// ErrNotInstalled is returned when an operation requires an existing
	// installation and the viewer has none for the plugin.
	ErrNotInstalled = errors.New("plugin: not installed")

	// ErrNotLoaded is returned when unloading a module that is not loaded.
	ErrNotLoaded = errors.New("plugin: module is not loaded")

	// ErrUnauthorized is returned when a mutating operation is attempted
	// without an authenticated viewer.
	ErrUnauthorized = errors.New("plugin: viewer is not authenticated")

	// ErrNilFactory is returned when a factory table entry is nil.
	ErrNilFactory = errors.New("plugin: factory is nil")
)
