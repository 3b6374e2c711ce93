package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"launchboard/internal/clock"
)

// Memory is an in-process implementation of InstallationStore and, via the
// Overrides view, OverrideStore. Both record families live behind one mutex,
// which makes the uninstall cascade (installation delete + override scrub)
// atomic: no reader can observe an override referencing a plugin whose
// installation is gone.
type Memory struct {
	mu        sync.RWMutex
	installs  map[string]map[string]*Installation // userID -> pluginID -> installation
	overrides map[OverrideKey][]string
	clk       clock.Clock
	logger    *zap.Logger
}

// MemoryOverrides is the OverrideStore view over a Memory store.
type MemoryOverrides struct {
	m *Memory
}

// Compile-time interface checks.
var (
	_ InstallationStore = (*Memory)(nil)
	_ OverrideStore     = (*MemoryOverrides)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory(clk clock.Clock, logger *zap.Logger) *Memory {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Memory{
		installs:  make(map[string]map[string]*Installation),
		overrides: make(map[OverrideKey][]string),
		clk:       clk,
		logger:    logger.Named("store"),
	}
}

// Overrides returns the OverrideStore view sharing this store's lock.
func (m *Memory) Overrides() *MemoryOverrides {
	return &MemoryOverrides{m: m}
}

// Get returns the installation for (userID, pluginID), or ErrNotFound.
func (m *Memory) Get(ctx context.Context, userID, pluginID string) (*Installation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.installs[userID][pluginID]
	if !ok {
		return nil, fmt.Errorf("installation %s/%s: %w", userID, pluginID, ErrNotFound)
	}
	return inst.Clone(), nil
}

// ListByUser returns the viewer's installations ordered by install time,
// then plugin id for stability.
func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*Installation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Installation, 0, len(m.installs[userID]))
	for _, inst := range m.installs[userID] {
		result = append(result, inst.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].InstalledAt.Equal(result[j].InstalledAt) {
			return result[i].InstalledAt.Before(result[j].InstalledAt)
		}
		return result[i].PluginID < result[j].PluginID
	})
	return result, nil
}

// Install upserts an installation with Enabled=true. Settings survive a
// re-install.
func (m *Memory) Install(ctx context.Context, userID, pluginID string) (*Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clk.Now()

	if existing, ok := m.installs[userID][pluginID]; ok {
		existing.Enabled = true
		existing.UpdatedAt = now
		return existing.Clone(), nil
	}

	if m.installs[userID] == nil {
		m.installs[userID] = make(map[string]*Installation)
	}
	inst := &Installation{
		UserID:      userID,
		PluginID:    pluginID,
		Enabled:     true,
		InstalledAt: now,
		UpdatedAt:   now,
	}
	m.installs[userID][pluginID] = inst

	m.logger.Debug("Installation created",
		zap.String("user", userID),
		zap.String("plugin", pluginID))

	return inst.Clone(), nil
}

// SetEnabled toggles the enabled flag on an existing installation.
func (m *Memory) SetEnabled(ctx context.Context, userID, pluginID string, enabled bool) (*Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.installs[userID][pluginID]
	if !ok {
		return nil, fmt.Errorf("installation %s/%s: %w", userID, pluginID, ErrNotFound)
	}

	inst.Enabled = enabled
	inst.UpdatedAt = m.clk.Now()
	return inst.Clone(), nil
}

// MergeSettings applies a top-level-key JSON merge onto the stored settings.
func (m *Memory) MergeSettings(ctx context.Context, userID, pluginID string, patch json.RawMessage) (*Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.installs[userID][pluginID]
	if !ok {
		return nil, fmt.Errorf("installation %s/%s: %w", userID, pluginID, ErrNotFound)
	}

	merged, err := mergeSettings(inst.Settings, patch)
	if err != nil {
		return nil, err
	}

	inst.Settings = merged
	inst.UpdatedAt = m.clk.Now()
	return inst.Clone(), nil
}

// Delete removes the installation and scrubs pluginID from every override
// set of the viewer under the same lock. An override set emptied by the
// scrub is deleted outright, reverting that entity to no-override behavior.
func (m *Memory) Delete(ctx context.Context, userID, pluginID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.installs[userID][pluginID]; !ok {
		return fmt.Errorf("installation %s/%s: %w", userID, pluginID, ErrNotFound)
	}

	delete(m.installs[userID], pluginID)
	if len(m.installs[userID]) == 0 {
		delete(m.installs, userID)
	}

	scrubbed := 0
	for key, ids := range m.overrides {
		if key.UserID != userID {
			continue
		}
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != pluginID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(ids) {
			continue
		}
		scrubbed++
		if len(kept) == 0 {
			delete(m.overrides, key)
		} else {
			m.overrides[key] = kept
		}
	}

	m.logger.Debug("Installation deleted",
		zap.String("user", userID),
		zap.String("plugin", pluginID),
		zap.Int("overrides_scrubbed", scrubbed))

	return nil
}

// Get returns the override set for key, and whether a record exists.
func (o *MemoryOverrides) Get(ctx context.Context, key OverrideKey) ([]string, bool, error) {
	o.m.mu.RLock()
	defer o.m.mu.RUnlock()

	ids, ok := o.m.overrides[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true, nil
}

// Set replaces the override set wholesale, deduplicating while preserving
// first occurrence order.
func (o *MemoryOverrides) Set(ctx context.Context, key OverrideKey, pluginIDs []string) error {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()

	seen := make(map[string]struct{}, len(pluginIDs))
	stored := make([]string, 0, len(pluginIDs))
	for _, id := range pluginIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		stored = append(stored, id)
	}

	o.m.overrides[key] = stored
	return nil
}

// Clear deletes the override record for key.
func (o *MemoryOverrides) Clear(ctx context.Context, key OverrideKey) error {
	o.m.mu.Lock()
	defer o.m.mu.Unlock()

	delete(o.m.overrides, key)
	return nil
}

// ListByUser returns all override keys stored for a viewer.
func (o *MemoryOverrides) ListByUser(ctx context.Context, userID string) ([]OverrideKey, error) {
	o.m.mu.RLock()
	defer o.m.mu.RUnlock()

	result := make([]OverrideKey, 0)
	for key := range o.m.overrides {
		if key.UserID == userID {
			result = append(result, key)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EntityType != result[j].EntityType {
			return result[i].EntityType < result[j].EntityType
		}
		return result[i].EntityID < result[j].EntityID
	})
	return result, nil
}
