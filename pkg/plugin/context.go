package plugin

import "go.uber.org/zap"

// Catalog is the read-only slice of the entity data service exposed to
// plugin modules. The full catalog lives in internal/entity; the plugin
// system treats payloads as opaque.
type Catalog interface {
	// Entity returns the domain object for an entity, or false if it
	// does not exist.
	Entity(entityType EntityType, entityID string) (any, bool)

	// EntityIDs returns the known ids for an entity type, in a stable order.
	EntityIDs(entityType EntityType) []string
}

// Context provides dependencies to plugin factories at load time.
// It wraps the services available to all plugins in a single struct
// for cleaner factory signatures.
type Context struct {
	// Logger is a structured logger for the module to use.
	// Modules should use Logger.Named(pluginID) for namespacing.
	Logger *zap.Logger

	// Catalog gives read access to the entity data the platform serves.
	Catalog Catalog
}

// Named returns a copy of the context with the logger namespaced to name.
func (c *Context) Named(name string) *Context {
	out := *c
	if c.Logger != nil {
		out.Logger = c.Logger.Named(name)
	}
	return &out
}
