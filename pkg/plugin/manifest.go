package plugin

import (
	"errors"
	"fmt"
	"regexp"
)

// EntityType identifies which kind of profile page a plugin is relevant for.
type EntityType string

// Known entity types.
const (
	// EntityCompany - company profile pages.
	EntityCompany EntityType = "company"

	// EntityInvestor - investor profile pages.
	EntityInvestor EntityType = "investor"

	// EntityGlobal - pages not tied to a single entity (dashboards, search).
	EntityGlobal EntityType = "global"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityCompany, EntityInvestor, EntityGlobal:
		return true
	}
	return false
}

// SlotContribution declares a named extension point the plugin renders into.
type SlotContribution struct {
	Slot        string `json:"slot"`
	Description string `json:"description,omitempty"`
}

// Manifest describes a plugin's identity, display metadata, and slot
// contributions. Manifests are immutable after registration; the registry
// stores its own copy.
type Manifest struct {
	// Identity
	ID          string `json:"id"`      // Unique, stable across versions (e.g. "company-metrics")
	Name        string `json:"name"`    // Human-readable name
	Description string `json:"description"`
	Version     string `json:"version"` // Semver (e.g. "1.2.0")
	Author      string `json:"author,omitempty"`
	Icon        string `json:"icon,omitempty"`

	// EntityTypes lists the entity kinds this plugin is relevant for.
	EntityTypes []EntityType `json:"entityTypes"`

	// Slots lists every extension point this plugin contributes to,
	// in the order the plugin author declared them.
	Slots []SlotContribution `json:"slots"`
}

// Validation errors.
var (
	ErrMissingID         = errors.New("manifest: id is required")
	ErrInvalidID         = errors.New("manifest: id must be lowercase alphanumeric with hyphens")
	ErrMissingName       = errors.New("manifest: name is required")
	ErrMissingVersion    = errors.New("manifest: version is required")
	ErrInvalidVersion    = errors.New("manifest: version must be valid semver")
	ErrNoEntityTypes     = errors.New("manifest: at least one entity type is required")
	ErrInvalidEntityType = errors.New("manifest: invalid entity type")
	ErrNoSlots           = errors.New("manifest: at least one slot contribution is required")
	ErrMissingSlotName   = errors.New("manifest: slot name is required")
)

// idPattern validates plugin ids.
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// semverPattern validates version strings (simplified semver).
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// Validate checks that the manifest is well formed.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return ErrMissingID
	}
	if !idPattern.MatchString(m.ID) {
		return fmt.Errorf("%w: %s", ErrInvalidID, m.ID)
	}

	if m.Name == "" {
		return fmt.Errorf("%w (id: %s)", ErrMissingName, m.ID)
	}

	if m.Version == "" {
		return fmt.Errorf("%w (id: %s)", ErrMissingVersion, m.ID)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}

	if len(m.EntityTypes) == 0 {
		return fmt.Errorf("%w (id: %s)", ErrNoEntityTypes, m.ID)
	}
	for _, t := range m.EntityTypes {
		if !t.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidEntityType, t)
		}
	}

	if len(m.Slots) == 0 {
		return fmt.Errorf("%w (id: %s)", ErrNoSlots, m.ID)
	}
	for i, s := range m.Slots {
		if s.Slot == "" {
			return fmt.Errorf("%w at index %d (id: %s)", ErrMissingSlotName, i, m.ID)
		}
	}

	return nil
}

// HasSlot returns true if the plugin declares the named slot.
func (m *Manifest) HasSlot(slot string) bool {
	for _, s := range m.Slots {
		if s.Slot == slot {
			return true
		}
	}
	return false
}

// SupportsEntityType returns true if the plugin is relevant for the entity type.
func (m *Manifest) SupportsEntityType(t EntityType) bool {
	for _, et := range m.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// SlotNames returns the declared slot names in declaration order.
func (m *Manifest) SlotNames() []string {
	names := make([]string, len(m.Slots))
	for i, s := range m.Slots {
		names[i] = s.Slot
	}
	return names
}

// Clone creates a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	clone := *m

	if m.EntityTypes != nil {
		clone.EntityTypes = make([]EntityType, len(m.EntityTypes))
		copy(clone.EntityTypes, m.EntityTypes)
	}

	if m.Slots != nil {
		clone.Slots = make([]SlotContribution, len(m.Slots))
		copy(clone.Slots, m.Slots)
	}

	return &clone
}

// String returns a string representation of the manifest.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.ID, m.Version)
}
