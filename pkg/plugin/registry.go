package plugin

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry is the process-wide catalog of known plugin manifests. It is
// created at application startup and passed explicitly to the loader, the
// resolver, and the HTTP handlers - there is no ambient global instance.
//
// The manifest map is effectively write-once-at-startup, read-many
// thereafter, but Register stays safe against late or duplicate
// registration attempts: the first registration for an id wins and
// conflicts are logged without aborting startup.
type Registry struct {
	mu        sync.RWMutex
	manifests map[string]*Manifest
	order     []string
	logger    *zap.Logger
}

// NewRegistry creates an empty plugin registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		manifests: make(map[string]*Manifest),
		order:     make([]string, 0),
		logger:    logger.Named("registry"),
	}
}

// Register adds a manifest to the registry. The registry stores its own
// copy, so later mutation of the argument has no effect.
//
// A second registration with a colliding id is a no-op: the conflict is
// logged as a warning and ErrDuplicatePlugin is returned so callers can
// report it, but the registry keeps the first manifest.
func (r *Registry) Register(m *Manifest) error {
	if m == nil {
		return ErrNilManifest
	}
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.manifests[m.ID]; exists {
		r.logger.Warn("Duplicate plugin registration ignored",
			zap.String("plugin", m.ID),
			zap.String("kept_version", existing.Version),
			zap.String("rejected_version", m.Version))
		return fmt.Errorf("plugin %q: %w", m.ID, ErrDuplicatePlugin)
	}

	r.manifests[m.ID] = m.Clone()
	r.order = append(r.order, m.ID)

	r.logger.Info("Plugin registered",
		zap.String("plugin", m.ID),
		zap.String("version", m.Version),
		zap.Int("slots", len(m.Slots)))

	return nil
}

// GetAll returns all registered manifests in registration order. The order
// is the stable, deterministic order slot resolution renders components in.
// Returned manifests are clones; callers cannot mutate the registry's copy.
func (r *Registry) GetAll() []*Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Manifest, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.manifests[id].Clone())
	}
	return result
}

// GetByID returns a clone of the manifest for an id, or false if unknown.
func (r *Registry) GetByID(id string) (*Manifest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.manifests[id]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// GetByEntityType returns manifests relevant for an entity type,
// in registration order.
func (r *Registry) GetByEntityType(t EntityType) []*Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Manifest, 0)
	for _, id := range r.order {
		if m := r.manifests[id]; m.SupportsEntityType(t) {
			result = append(result, m.Clone())
		}
	}
	return result
}

// GetBySlot returns manifests declaring the named slot, in registration order.
func (r *Registry) GetBySlot(slot string) []*Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Manifest, 0)
	for _, id := range r.order {
		if m := r.manifests[id]; m.HasSlot(slot) {
			result = append(result, m.Clone())
		}
	}
	return result
}

// Names returns the ids of all registered plugins in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.manifests)
}
