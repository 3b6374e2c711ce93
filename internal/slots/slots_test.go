package slots

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"launchboard/internal/clock"
	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

// fakeModule is a scriptable plugin module with lifecycle counters.
type fakeModule struct {
	components map[string]plugin.Component
	initErr    error
	cleanupErr error
	initCount  atomic.Int32
	cleanCount atomic.Int32
	initDelay  time.Duration
}

func (m *fakeModule) Component(slot string) plugin.Component {
	return m.components[slot]
}

func (m *fakeModule) Initialize(ctx context.Context) error {
	if m.initDelay > 0 {
		time.Sleep(m.initDelay)
	}
	m.initCount.Add(1)
	return m.initErr
}

func (m *fakeModule) Cleanup(ctx context.Context) error {
	m.cleanCount.Add(1)
	return m.cleanupErr
}

// staticComponent renders a fixed title so tests can identify which plugin
// produced a rendering.
func staticComponent(title string) plugin.Component {
	return plugin.ComponentFunc(func(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
		return &plugin.Rendering{Title: title}, nil
	})
}

func slotManifest(id string, slots ...string) *plugin.Manifest {
	contribs := make([]plugin.SlotContribution, len(slots))
	for i, s := range slots {
		contribs[i] = plugin.SlotContribution{Slot: s}
	}
	return &plugin.Manifest{
		ID:          id,
		Name:        id,
		Version:     "1.0.0",
		EntityTypes: []plugin.EntityType{plugin.EntityCompany, plugin.EntityInvestor},
		Slots:       contribs,
	}
}

// moduleFor builds a fakeModule providing a static component for each slot.
func moduleFor(id string, slots ...string) *fakeModule {
	components := make(map[string]plugin.Component, len(slots))
	for _, s := range slots {
		components[s] = staticComponent(id + ":" + s)
	}
	return &fakeModule{components: components}
}

// env is a full plugin system wired over in-memory stores.
type env struct {
	registry  *plugin.Registry
	loader    *Loader
	service   *Service
	resolver  *Resolver
	mem       *store.Memory
	factories map[string]plugin.Factory
	modules   map[string]*fakeModule
	logger    *zap.Logger
}

const (
	slotHeader  = "CompanyProfile.Header"
	slotDetails = "CompanyProfile.Details"
)

func zapTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	return logger
}

// newEnv registers company-metrics and timeline, both declaring the header
// and details slots of a company profile page.
func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zapTestLogger(t)

	registry := plugin.NewRegistry(logger)
	modules := map[string]*fakeModule{
		"company-metrics": moduleFor("company-metrics", slotHeader, slotDetails),
		"timeline":        moduleFor("timeline", slotHeader, slotDetails),
	}
	manifests := []*plugin.Manifest{
		slotManifest("company-metrics", slotHeader, slotDetails),
		slotManifest("timeline", slotHeader, slotDetails),
	}
	factories := make(map[string]plugin.Factory)
	for id, mod := range modules {
		mod := mod
		factories[id] = func(ctx *plugin.Context) (plugin.Module, error) { return mod, nil }
	}
	for _, m := range manifests {
		if err := registry.Register(m); err != nil {
			t.Fatalf("register %s: %v", m.ID, err)
		}
	}

	clk := clock.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	mem := store.NewMemory(clk, logger)

	loader := NewLoader(registry, factories, &plugin.Context{Logger: logger}, logger)
	service := NewService(registry, loader, mem, mem.Overrides(), logger)

	return &env{
		registry:  registry,
		loader:    loader,
		service:   service,
		resolver:  service.Resolver(),
		mem:       mem,
		factories: factories,
		modules:   modules,
		logger:    logger,
	}
}

// installEnabled installs (and therefore enables) the plugins for a viewer.
func (e *env) installEnabled(t *testing.T, viewer string, pluginIDs ...string) {
	t.Helper()
	for _, id := range pluginIDs {
		if _, err := e.service.Install(context.Background(), viewer, id); err != nil {
			t.Fatalf("install %s: %v", id, err)
		}
	}
}

// failingStore errors on every operation, for degradation tests.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(ctx context.Context, userID, pluginID string) (*store.Installation, error) {
	return nil, errStoreDown
}
func (failingStore) ListByUser(ctx context.Context, userID string) ([]*store.Installation, error) {
	return nil, errStoreDown
}
func (failingStore) Install(ctx context.Context, userID, pluginID string) (*store.Installation, error) {
	return nil, errStoreDown
}
func (failingStore) SetEnabled(ctx context.Context, userID, pluginID string, enabled bool) (*store.Installation, error) {
	return nil, errStoreDown
}
func (failingStore) MergeSettings(ctx context.Context, userID, pluginID string, patch json.RawMessage) (*store.Installation, error) {
	return nil, errStoreDown
}
func (failingStore) Delete(ctx context.Context, userID, pluginID string) error {
	return errStoreDown
}

type failingOverrides struct{}

func (failingOverrides) Get(ctx context.Context, key store.OverrideKey) ([]string, bool, error) {
	return nil, false, errStoreDown
}
func (failingOverrides) Set(ctx context.Context, key store.OverrideKey, pluginIDs []string) error {
	return errStoreDown
}
func (failingOverrides) Clear(ctx context.Context, key store.OverrideKey) error {
	return errStoreDown
}
func (failingOverrides) ListByUser(ctx context.Context, userID string) ([]store.OverrideKey, error) {
	return nil, errStoreDown
}
