package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		ID:          "company-metrics",
		Name:        "Company Metrics",
		Description: "Funding totals and round breakdown",
		Version:     "1.0.0",
		Author:      "launchboard",
		EntityTypes: []EntityType{EntityCompany},
		Slots: []SlotContribution{
			{Slot: "CompanyProfile.Header", Description: "Headline funding metrics"},
			{Slot: "CompanyProfile.Details", Description: "Per-round breakdown"},
		},
	}
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manifest)
		wantErr error
	}{
		{
			name:   "valid manifest",
			mutate: func(m *Manifest) {},
		},
		{
			name:    "missing id",
			mutate:  func(m *Manifest) { m.ID = "" },
			wantErr: ErrMissingID,
		},
		{
			name:    "uppercase id",
			mutate:  func(m *Manifest) { m.ID = "CompanyMetrics" },
			wantErr: ErrInvalidID,
		},
		{
			name:    "id with trailing hyphen",
			mutate:  func(m *Manifest) { m.ID = "metrics-" },
			wantErr: ErrInvalidID,
		},
		{
			name:    "missing name",
			mutate:  func(m *Manifest) { m.Name = "" },
			wantErr: ErrMissingName,
		},
		{
			name:    "missing version",
			mutate:  func(m *Manifest) { m.Version = "" },
			wantErr: ErrMissingVersion,
		},
		{
			name:    "invalid version",
			mutate:  func(m *Manifest) { m.Version = "1.0" },
			wantErr: ErrInvalidVersion,
		},
		{
			name:   "prerelease version",
			mutate: func(m *Manifest) { m.Version = "1.0.0-beta.1" },
		},
		{
			name:    "no entity types",
			mutate:  func(m *Manifest) { m.EntityTypes = nil },
			wantErr: ErrNoEntityTypes,
		},
		{
			name:    "unknown entity type",
			mutate:  func(m *Manifest) { m.EntityTypes = []EntityType{"startup"} },
			wantErr: ErrInvalidEntityType,
		},
		{
			name:    "no slots",
			mutate:  func(m *Manifest) { m.Slots = nil },
			wantErr: ErrNoSlots,
		},
		{
			name:    "empty slot name",
			mutate:  func(m *Manifest) { m.Slots = []SlotContribution{{Slot: ""}} },
			wantErr: ErrMissingSlotName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			err := m.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManifest_HasSlot(t *testing.T) {
	m := validManifest()

	assert.True(t, m.HasSlot("CompanyProfile.Header"))
	assert.True(t, m.HasSlot("CompanyProfile.Details"))
	assert.False(t, m.HasSlot("InvestorProfile.Header"))
	assert.False(t, m.HasSlot(""))
}

func TestManifest_SupportsEntityType(t *testing.T) {
	m := validManifest()

	assert.True(t, m.SupportsEntityType(EntityCompany))
	assert.False(t, m.SupportsEntityType(EntityInvestor))
	assert.False(t, m.SupportsEntityType(EntityGlobal))
}

func TestManifest_SlotNames(t *testing.T) {
	m := validManifest()

	assert.Equal(t, []string{"CompanyProfile.Header", "CompanyProfile.Details"}, m.SlotNames())
}

func TestManifest_Clone(t *testing.T) {
	m := validManifest()
	clone := m.Clone()

	require.Equal(t, m, clone)

	// Mutating the clone must not affect the original.
	clone.Slots[0].Slot = "Other.Slot"
	clone.EntityTypes[0] = EntityGlobal

	assert.Equal(t, "CompanyProfile.Header", m.Slots[0].Slot)
	assert.Equal(t, EntityCompany, m.EntityTypes[0])
}

func TestEntityType_Valid(t *testing.T) {
	assert.True(t, EntityCompany.Valid())
	assert.True(t, EntityInvestor.Valid())
	assert.True(t, EntityGlobal.Valid())
	assert.False(t, EntityType("startup").Valid())
	assert.False(t, EntityType("").Valid())
}
