// Package plugin provides the plugin contract and registry for the
// launchboard platform. Plugins contribute renderable components to named
// slots on entity profile pages (e.g. "CompanyProfile.Header"). The set of
// plugins is fixed at build time: each plugin package exposes a manifest and
// a factory, and the application wires them into a registry at startup.
package plugin

import (
	"context"
	"encoding/json"
)

// RenderRequest carries everything a component needs to produce its rendering.
type RenderRequest struct {
	// Viewer is the authenticated viewer id. Never empty: anonymous viewers
	// are filtered out before any component renders.
	Viewer string

	// EntityType and EntityID identify the profile page being rendered.
	// Both are empty for global slots.
	EntityType EntityType
	EntityID   string

	// Data is the opaque entity payload supplied by the entity data
	// provider (a *entity.Company or *entity.Investor in practice).
	Data any

	// Settings is the viewer's stored settings blob for this plugin.
	Settings json.RawMessage

	// PageContext carries extra key-value context from the caller.
	PageContext map[string]string
}

// Rendering is the JSON-serializable view model a component returns.
// The UI layer decides how a given Kind is displayed; the plugin system
// only guarantees ordering and isolation.
type Rendering struct {
	PluginID string         `json:"pluginId"`
	Slot     string         `json:"slot"`
	Title    string         `json:"title,omitempty"`
	Kind     string         `json:"kind,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
}

// Component renders one slot contribution.
type Component interface {
	Render(ctx context.Context, req RenderRequest) (*Rendering, error)
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(ctx context.Context, req RenderRequest) (*Rendering, error)

// Render implements Component.
func (f ComponentFunc) Render(ctx context.Context, req RenderRequest) (*Rendering, error) {
	return f(ctx, req)
}

// Module is the loaded, executable form of a plugin: a mapping from slot
// names to components. Modules are created by their Factory on first use and
// cached by the loader for the process lifetime (or until unloaded).
type Module interface {
	// Component returns the component for a slot, or nil if the module
	// does not provide it.
	Component(slot string) Component
}

// Initializer is an optional interface for modules that need one-time setup
// before first use. Initialize is invoked exactly once per load cycle; if it
// fails the module stays unloaded.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Cleaner is an optional interface for modules that hold resources.
// Cleanup is invoked when the module is unloaded.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// Factory creates a module instance given a context. Factories form the
// closed registration table: adding a plugin means adding a factory entry,
// there is no runtime plugin upload.
type Factory func(ctx *Context) (Module, error)
