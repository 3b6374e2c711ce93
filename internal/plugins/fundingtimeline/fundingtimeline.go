// Package fundingtimeline contributes a chronological view of financing
// events. On company pages it lists the company's own rounds; on investor
// pages it lists the rounds the investor participated in.
package fundingtimeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

// ID is the plugin's registry id.
const ID = "timeline"

const (
	slotCompanyHeader   = "CompanyProfile.Header"
	slotCompanyDetails  = "CompanyProfile.Details"
	slotInvestorDetails = "InvestorProfile.Details"

	defaultLimit = 10
)

// Manifest describes the plugin.
func Manifest() *plugin.Manifest {
	return &plugin.Manifest{
		ID:          ID,
		Name:        "Funding Timeline",
		Description: "Chronological funding events for companies and investors.",
		Version:     "2.0.1",
		Author:      "Launchboard",
		Icon:        "clock",
		EntityTypes: []plugin.EntityType{plugin.EntityCompany, plugin.EntityInvestor},
		Slots: []plugin.SlotContribution{
			{Slot: slotCompanyHeader, Description: "Most recent funding event."},
			{Slot: slotCompanyDetails, Description: "Full funding timeline, newest first."},
			{Slot: slotInvestorDetails, Description: "Rounds this investor participated in, newest first."},
		},
	}
}

// event is one timeline entry.
type event struct {
	Label     string    `json:"label"`
	AmountUSD float64   `json:"amountUsd"`
	Date      time.Time `json:"date"`
}

// Module renders funding timelines.
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
	case slotCompanyHeader:
		return plugin.ComponentFunc(m.renderCompanyHeader)
	case slotCompanyDetails:
		return plugin.ComponentFunc(m.renderCompanyDetails)
	case slotInvestorDetails:
		return plugin.ComponentFunc(m.renderInvestorDetails)
	default:
		return nil
	}
}

func (m *Module) company(req plugin.RenderRequest) (*entity.Company, bool) {
	if c, ok := req.Data.(*entity.Company); ok && c != nil {
		return c, true
	}
	if m.catalog == nil || req.EntityID == "" {
		return nil, false
	}
	raw, ok := m.catalog.Entity(plugin.EntityCompany, req.EntityID)
	if !ok {
		return nil, false
	}
	c, ok := raw.(*entity.Company)
	return c, ok
}

func (m *Module) renderCompanyHeader(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	company, ok := m.company(req)
	if !ok {
		return nil, fmt.Errorf("no company payload for entity %q", req.EntityID)
	}
	latest := company.LatestRound()
	if latest == nil {
		// A company with no rounds contributes nothing to the header.
		return nil, nil
	}

	return &plugin.Rendering{
		Title: "Latest Round",
		Kind:  "badge",
		Props: map[string]any{
			"round":     latest.Round,
			"amountUsd": latest.AmountUSD,
			"date":      latest.AnnouncedAt.Format("2006-01-02"),
		},
	}, nil
}

func (m *Module) renderCompanyDetails(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	company, ok := m.company(req)
	if !ok {
		return nil, fmt.Errorf("no company payload for entity %q", req.EntityID)
	}

	events := make([]event, 0, len(company.Rounds))
	for _, r := range company.Rounds {
		events = append(events, event{Label: r.Round, AmountUSD: r.AmountUSD, Date: r.AnnouncedAt})
	}

	return m.timelineRendering("Funding Timeline", events, req.Settings), nil
}

func (m *Module) renderInvestorDetails(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	if m.catalog == nil || req.EntityID == "" {
		return nil, fmt.Errorf("no investor payload for entity %q", req.EntityID)
	}

	// Walk every company's rounds and keep the ones this investor joined.
	var events []event
	for _, companyID := range m.catalog.EntityIDs(plugin.EntityCompany) {
		raw, ok := m.catalog.Entity(plugin.EntityCompany, companyID)
		if !ok {
			continue
		}
		company, ok := raw.(*entity.Company)
		if !ok {
			continue
		}
		for _, r := range company.Rounds {
			for _, inv := range r.Investors {
				if inv == req.EntityID {
					events = append(events, event{
						Label:     company.Name + " " + r.Round,
						AmountUSD: r.AmountUSD,
						Date:      r.AnnouncedAt,
					})
					break
				}
			}
		}
	}

	return m.timelineRendering("Investment Timeline", events, req.Settings), nil
}

// timelineRendering sorts events newest first and applies the viewer's
// "limit" setting.
func (m *Module) timelineRendering(title string, events []event, settings []byte) *plugin.Rendering {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})

	limit := defaultLimit
	if v := gjson.GetBytes(settings, "limit"); v.Exists() && v.Int() > 0 {
		limit = int(v.Int())
	}
	truncated := len(events) > limit
	if truncated {
		events = events[:limit]
	}

	items := make([]map[string]any, 0, len(events))
	for _, e := range events {
		items = append(items, map[string]any{
			"label":     e.Label,
			"amountUsd": e.AmountUSD,
			"date":      e.Date.Format("2006-01-02"),
		})
	}

	return &plugin.Rendering{
		Title: title,
		Kind:  "timeline",
		Props: map[string]any{
			"events":    items,
			"truncated": truncated,
		},
	}
}
