// Package companymetrics contributes funding metrics to company profile
// pages: a headline summary in the header and a per-round breakdown in the
// details section.
package companymetrics

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

// ID is the plugin's registry id.
const ID = "company-metrics"

const (
	slotHeader  = "CompanyProfile.Header"
	slotDetails = "CompanyProfile.Details"
)

// Manifest describes the plugin.
func Manifest() *plugin.Manifest {
	return &plugin.Manifest{
		ID:          ID,
		Name:        "Company Metrics",
		Description: "Funding totals and round-by-round breakdown for a company.",
		Version:     "1.2.0",
		Author:      "Launchboard",
		Icon:        "bar-chart",
		EntityTypes: []plugin.EntityType{plugin.EntityCompany},
		Slots: []plugin.SlotContribution{
			{Slot: slotHeader, Description: "Total raised, round count, and latest round."},
			{Slot: slotDetails, Description: "Full funding round breakdown."},
		},
	}
}

// Module renders company funding metrics.
type Module struct {
	catalog plugin.Catalog
	logger  *zap.Logger
}

// New is the plugin factory.
func New(ctx *plugin.Context) (plugin.Module, error) {
	return &Module{
		catalog: ctx.Catalog,
		logger:  ctx.Logger,
	}, nil
}

// Component implements plugin.Module.
func (m *Module) Component(slot string) plugin.Component {
	switch slot {
	case slotHeader:
		return plugin.ComponentFunc(m.renderHeader)
	case slotDetails:
		return plugin.ComponentFunc(m.renderDetails)
	default:
		return nil
	}
}

// company resolves the company payload from the request, preferring the
// caller-supplied data and falling back to a catalog lookup.
func (m *Module) company(req plugin.RenderRequest) (*entity.Company, bool) {
	if c, ok := req.Data.(*entity.Company); ok && c != nil {
		return c, true
	}
	if m.catalog == nil || req.EntityType != plugin.EntityCompany || req.EntityID == "" {
		return nil, false
	}
	raw, ok := m.catalog.Entity(plugin.EntityCompany, req.EntityID)
	if !ok {
		return nil, false
	}
	c, ok := raw.(*entity.Company)
	return c, ok
}

func (m *Module) renderHeader(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	company, ok := m.company(req)
	if !ok {
		return nil, fmt.Errorf("no company payload for entity %q", req.EntityID)
	}

	props := map[string]any{
		"totalRaised": formatAmount(company.TotalRaisedUSD(), req.Settings),
		"roundCount":  len(company.Rounds),
	}
	if latest := company.LatestRound(); latest != nil {
		props["latestRound"] = latest.Round
		props["latestAmount"] = formatAmount(latest.AmountUSD, req.Settings)
		props["latestDate"] = latest.AnnouncedAt.Format("2006-01-02")
	}

	return &plugin.Rendering{
		Title: "Funding Summary",
		Kind:  "metric-strip",
		Props: props,
	}, nil
}

func (m *Module) renderDetails(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	company, ok := m.company(req)
	if !ok {
		return nil, fmt.Errorf("no company payload for entity %q", req.EntityID)
	}

	rounds := make([]map[string]any, 0, len(company.Rounds))
	for _, r := range company.Rounds {
		rounds = append(rounds, map[string]any{
			"round":     r.Round,
			"amount":    formatAmount(r.AmountUSD, req.Settings),
			"announced": r.AnnouncedAt.Format("2006-01-02"),
			"investors": len(r.Investors),
		})
	}

	return &plugin.Rendering{
		Title: "Funding Rounds",
		Kind:  "table",
		Props: map[string]any{
			"rounds":      rounds,
			"totalRaised": formatAmount(company.TotalRaisedUSD(), req.Settings),
		},
	}, nil
}

// formatAmount renders a USD amount honoring the viewer's display settings:
// "currency" selects the symbol and "compact" switches to short form
// ("$56.5M" instead of "$56,500,000").
func formatAmount(amountUSD float64, settings []byte) string {
	symbol := "$"
	switch gjson.GetBytes(settings, "currency").String() {
	case "EUR":
		symbol = "€"
	case "GBP":
		symbol = "£"
	}

	compact := true
	if v := gjson.GetBytes(settings, "compact"); v.Exists() {
		compact = v.Bool()
	}
	if !compact {
		return symbol + groupThousands(amountUSD)
	}

	switch {
	case amountUSD >= 1e9:
		return fmt.Sprintf("%s%.1fB", symbol, amountUSD/1e9)
	case amountUSD >= 1e6:
		return fmt.Sprintf("%s%.1fM", symbol, amountUSD/1e6)
	case amountUSD >= 1e3:
		return fmt.Sprintf("%s%.1fK", symbol, amountUSD/1e3)
	default:
		return fmt.Sprintf("%s%.0f", symbol, amountUSD)
	}
}

func groupThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
