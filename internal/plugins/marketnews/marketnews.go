// Package marketnews contributes sector headlines to the global sidebar and
// to company sidebars. Headlines are synthesized from catalog funding
// activity at load time; there is no external news feed.
package marketnews

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

// ID is the plugin's registry id.
const ID = "market-news"

const (
	slotGlobalSidebar  = "Global.Sidebar"
	slotCompanySidebar = "CompanyProfile.Sidebar"

	defaultLimit = 5
)

// Manifest describes the plugin.
func Manifest() *plugin.Manifest {
	return &plugin.Manifest{
		ID:          ID,
		Name:        "Market News",
		Description: "Recent funding headlines by sector.",
		Version:     "0.9.0",
		Author:      "Launchboard",
		Icon:        "newspaper",
		EntityTypes: []plugin.EntityType{plugin.EntityGlobal, plugin.EntityCompany},
		Slots: []plugin.SlotContribution{
			{Slot: slotGlobalSidebar, Description: "Latest funding headlines across all sectors."},
			{Slot: slotCompanySidebar, Description: "Headlines from the company's sector."},
		},
	}
}

// headline is one synthesized news item.
type headline struct {
	Text   string
	Sector string
	Date   time.Time
}

// Module serves headlines from an index built at load time.
type Module struct {
	catalog plugin.Catalog
	logger  *zap.Logger

	mu       sync.RWMutex
	all      []headline // newest first
	bySector map[string][]headline
}

// New is the plugin factory.
func New(ctx *plugin.Context) (plugin.Module, error) {
	return &Module{
		catalog: ctx.Catalog,
		logger:  ctx.Logger,
	}, nil
}

// Initialize builds the headline index from catalog funding rounds.
func (m *Module) Initialize(ctx context.Context) error {
	if m.catalog == nil {
		return fmt.Errorf("no entity catalog available")
	}

	var all []headline
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
			all = append(all, headline{
				Text:   fmt.Sprintf("%s raises %s ($%.1fM)", company.Name, r.Round, r.AmountUSD/1e6),
				Sector: company.Sector,
				Date:   r.AnnouncedAt,
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	bySector := make(map[string][]headline)
	for _, h := range all {
		bySector[h.Sector] = append(bySector[h.Sector], h)
	}

	m.mu.Lock()
	m.all = all
	m.bySector = bySector
	m.mu.Unlock()

	m.logger.Info("Headline index built",
		zap.Int("headlines", len(all)),
		zap.Int("sectors", len(bySector)))
	return nil
}

// Component implements plugin.Module.
func (m *Module) Component(slot string) plugin.Component {
	switch slot {
	case slotGlobalSidebar:
		return plugin.ComponentFunc(m.renderGlobal)
	case slotCompanySidebar:
		return plugin.ComponentFunc(m.renderCompany)
	default:
		return nil
	}
}

func (m *Module) renderGlobal(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	m.mu.RLock()
	items := m.all
	m.mu.RUnlock()

	return m.rendering("Market News", items, req.Settings), nil
}

func (m *Module) renderCompany(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	sector := ""
	if c, ok := req.Data.(*entity.Company); ok && c != nil {
		sector = c.Sector
	} else if raw, ok := m.catalog.Entity(plugin.EntityCompany, req.EntityID); ok {
		if c, ok := raw.(*entity.Company); ok {
			sector = c.Sector
		}
	}
	if sector == "" {
		return nil, nil
	}

	m.mu.RLock()
	items := m.bySector[sector]
	m.mu.RUnlock()

	return m.rendering(sector+" News", items, req.Settings), nil
}

// rendering applies the viewer's "limit" setting and shapes the view model.
func (m *Module) rendering(title string, items []headline, settings []byte) *plugin.Rendering {
	limit := defaultLimit
	if v := gjson.GetBytes(settings, "limit"); v.Exists() && v.Int() > 0 {
		limit = int(v.Int())
	}
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]map[string]any, 0, len(items))
	for _, h := range items {
		out = append(out, map[string]any{
			"text":   h.Text,
			"sector": h.Sector,
			"date":   h.Date.Format("2006-01-02"),
		})
	}

	return &plugin.Rendering{
		Title: title,
		Kind:  "headline-list",
		Props: map[string]any{"headlines": out},
	}
}
