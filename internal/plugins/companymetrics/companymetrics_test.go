package companymetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

func newModule(t *testing.T) plugin.Module {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	catalog := entity.NewCatalog(entity.DefaultSeed(), logger)
	mod, err := New(&plugin.Context{Logger: logger, Catalog: catalog})
	require.NoError(t, err)
	return mod
}

func TestManifestIsValid(t *testing.T) {
	m := Manifest()
	require.NoError(t, m.Validate())
	assert.Equal(t, ID, m.ID)
	assert.True(t, m.HasSlot(slotHeader))
	assert.True(t, m.HasSlot(slotDetails))
}

func TestComponentCoversDeclaredSlots(t *testing.T) {
	mod := newModule(t)
	for _, slot := range Manifest().SlotNames() {
		assert.NotNil(t, mod.Component(slot), slot)
	}
	assert.Nil(t, mod.Component("InvestorProfile.Header"))
}

func TestRenderHeader(t *testing.T) {
	mod := newModule(t)

	rendering, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityCompany,
		EntityID:   "acme",
	})
	require.NoError(t, err)
	require.NotNil(t, rendering)

	assert.Equal(t, "metric-strip", rendering.Kind)
	assert.Equal(t, "$56.5M", rendering.Props["totalRaised"])
	assert.Equal(t, 3, rendering.Props["roundCount"])
	assert.Equal(t, "Series B", rendering.Props["latestRound"])
	assert.Equal(t, "2023-02-08", rendering.Props["latestDate"])
}

func TestRenderHeaderPrefersSuppliedData(t *testing.T) {
	mod := newModule(t)

	company := &entity.Company{ID: "ghost", Name: "Ghost", Rounds: []entity.FundingRound{
		{Round: "Seed", AmountUSD: 1_000_000},
	}}
	rendering, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityCompany,
		EntityID:   "ghost",
		Data:       company,
	})
	require.NoError(t, err)
	assert.Equal(t, "$1.0M", rendering.Props["totalRaised"])
}

func TestRenderUnknownCompanyErrors(t *testing.T) {
	mod := newModule(t)

	_, err := mod.Component(slotHeader).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityCompany,
		EntityID:   "no-such-company",
	})
	assert.Error(t, err)
}

func TestRenderDetails(t *testing.T) {
	mod := newModule(t)

	rendering, err := mod.Component(slotDetails).Render(context.Background(), plugin.RenderRequest{
		Viewer:     "mira",
		EntityType: plugin.EntityCompany,
		EntityID:   "acme",
	})
	require.NoError(t, err)
	require.NotNil(t, rendering)

	rounds, ok := rendering.Props["rounds"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, rounds, 3)
	assert.Equal(t, "Seed", rounds[0]["round"])
	assert.Equal(t, "$2.5M", rounds[0]["amount"])
	assert.Equal(t, 2, rounds[0]["investors"])
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		settings string
		want     string
	}{
		{"default compact millions", 56_500_000, ``, "$56.5M"},
		{"billions", 1_200_000_000, ``, "$1.2B"},
		{"thousands", 900_000, ``, "$900.0K"},
		{"small", 250, ``, "$250"},
		{"euro", 14_000_000, `{"currency":"EUR"}`, "€14.0M"},
		{"pound", 14_000_000, `{"currency":"GBP"}`, "£14.0M"},
		{"unknown currency falls back", 14_000_000, `{"currency":"JPY"}`, "$14.0M"},
		{"full form", 56_500_000, `{"compact":false}`, "$56,500,000"},
		{"full form euro", 2_500_000, `{"currency":"EUR","compact":false}`, "€2,500,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatAmount(tt.amount, []byte(tt.settings)))
		})
	}
}
