package investornetwork

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

func newModule(t *testing.T) *Module {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	catalog := entity.NewCatalog(entity.DefaultSeed(), logger)
	mod, err := New(&plugin.Context{Logger: logger, Catalog: catalog})
	require.NoError(t, err)
	require.NoError(t, mod.(*Module).Initialize(context.Background()))
	return mod.(*Module)
}

func TestManifestIsValid(t *testing.T) {
	m := Manifest()
	require.NoError(t, m.Validate())
	assert.Equal(t, ID, m.ID)
	assert.Equal(t, []plugin.EntityType{plugin.EntityInvestor}, m.EntityTypes)
}

func TestInitializeWithoutCatalogFails(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mod, err := New(&plugin.Context{Logger: logger})
	require.NoError(t, err)
	assert.Error(t, mod.(*Module).Initialize(context.Background()))
}

func TestHeaderMetrics(t *testing.T) {
	mod := newModule(t)

	rendering, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityInvestor,
		EntityID:   "meridian-capital",
	})
	require.NoError(t, err)
	require.NotNil(t, rendering)

	// Meridian backed acme (A, B) and lumen-bio (seed, A); its co-investors
	// are northwind, orbital, and helix.
	assert.Equal(t, 2, rendering.Props["portfolioSize"])
	assert.Equal(t, 3, rendering.Props["coInvestors"])
}

func TestDetailsPortfolioAndCoInvestors(t *testing.T) {
	mod := newModule(t)

	rendering, err := mod.Component(slotDetails).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityInvestor,
		EntityID:   "meridian-capital",
	})
	require.NoError(t, err)
	require.NotNil(t, rendering)

	portfolio := rendering.Props["portfolio"].([]map[string]any)
	require.Len(t, portfolio, 2)
	assert.Equal(t, "acme", portfolio[0]["companyId"])
	assert.Equal(t, 2, portfolio[0]["rounds"])
	assert.Equal(t, "lumen-bio", portfolio[1]["companyId"])

	coInvestors := rendering.Props["coInvestors"].([]map[string]any)
	require.Len(t, coInvestors, 3)
	// Each partner shares exactly one round with meridian, so the ranking
	// falls back to id order.
	assert.Equal(t, "helix-partners", coInvestors[0]["investorId"])
	assert.Equal(t, "Helix Partners", coInvestors[0]["investorName"])
	assert.Equal(t, 1, coInvestors[0]["sharedRounds"])
	assert.Equal(t, "northwind-ventures", coInvestors[1]["investorId"])
	assert.Equal(t, "orbital-growth", coInvestors[2]["investorId"])
}

func TestUnknownInvestorRendersEmpty(t *testing.T) {
	mod := newModule(t)

	rendering, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityInvestor,
		EntityID:   "nobody",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rendering.Props["portfolioSize"])
	assert.Equal(t, 0, rendering.Props["coInvestors"])
}

func TestCleanupReleasesIndex(t *testing.T) {
	mod := newModule(t)

	require.NoError(t, mod.Cleanup(context.Background()))

	rendering, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityInvestor,
		EntityID:   "meridian-capital",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rendering.Props["portfolioSize"])
}
