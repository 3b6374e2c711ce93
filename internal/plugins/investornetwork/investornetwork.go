// Package investornetwork contributes portfolio and co-investor views to
// investor profile pages. It precomputes an index over the catalog at load
// time so renders are map lookups.
package investornetwork

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/pkg/plugin"
)

// ID is the plugin's registry id.
const ID = "investor-network"

const (
	slotHeader  = "InvestorProfile.Header"
	slotDetails = "InvestorProfile.Details"
)

// Manifest describes the plugin.
func Manifest() *plugin.Manifest {
	return &plugin.Manifest{
		ID:          ID,
		Name:        "Investor Network",
		Description: "Portfolio companies and co-investors for an investor.",
		Version:     "1.0.3",
		Author:      "Launchboard",
		Icon:        "share-2",
		EntityTypes: []plugin.EntityType{plugin.EntityInvestor},
		Slots: []plugin.SlotContribution{
			{Slot: slotHeader, Description: "Portfolio size and network reach."},
			{Slot: slotDetails, Description: "Portfolio companies and co-investor breakdown."},
		},
	}
}

// position is one portfolio entry in the index.
type position struct {
	companyID   string
	companyName string
	rounds      int
	investedUSD float64
}

// Module renders investor network views from a precomputed index.
type Module struct {
	catalog plugin.Catalog
	logger  *zap.Logger

	mu        sync.RWMutex
	portfolio map[string][]position     // investor id to positions
	coinvest  map[string]map[string]int // investor id to co-investor shared round counts
}

// New is the plugin factory.
func New(ctx *plugin.Context) (plugin.Module, error) {
	return &Module{
		catalog: ctx.Catalog,
		logger:  ctx.Logger,
	}, nil
}

// Initialize builds the portfolio and co-investment index from the catalog.
func (m *Module) Initialize(ctx context.Context) error {
	if m.catalog == nil {
		return fmt.Errorf("no entity catalog available")
	}

	portfolio := make(map[string][]position)
	coinvest := make(map[string]map[string]int)

	for _, companyID := range m.catalog.EntityIDs(plugin.EntityCompany) {
		raw, ok := m.catalog.Entity(plugin.EntityCompany, companyID)
		if !ok {
			continue
		}
		company, ok := raw.(*entity.Company)
		if !ok {
			continue
		}

		perInvestor := make(map[string]*position)
		for _, round := range company.Rounds {
			// Naive per-round split across participants.
			share := round.AmountUSD
			if n := len(round.Investors); n > 0 {
				share = round.AmountUSD / float64(n)
			}
			for _, inv := range round.Investors {
				p := perInvestor[inv]
				if p == nil {
					p = &position{companyID: company.ID, companyName: company.Name}
					perInvestor[inv] = p
				}
				p.rounds++
				p.investedUSD += share
			}
			for _, a := range round.Investors {
				for _, b := range round.Investors {
					if a == b {
						continue
					}
					if coinvest[a] == nil {
						coinvest[a] = make(map[string]int)
					}
					coinvest[a][b]++
				}
			}
		}
		for inv, p := range perInvestor {
			portfolio[inv] = append(portfolio[inv], *p)
		}
	}

	for inv := range portfolio {
		sort.Slice(portfolio[inv], func(i, j int) bool {
			return portfolio[inv][i].companyID < portfolio[inv][j].companyID
		})
	}

	m.mu.Lock()
	m.portfolio = portfolio
	m.coinvest = coinvest
	m.mu.Unlock()

	m.logger.Info("Investor network index built",
		zap.Int("investors", len(portfolio)))
	return nil
}

// Cleanup releases the index.
func (m *Module) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	m.portfolio = nil
	m.coinvest = nil
	m.mu.Unlock()
	return nil
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

func (m *Module) renderHeader(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	m.mu.RLock()
	positions := m.portfolio[req.EntityID]
	partners := len(m.coinvest[req.EntityID])
	m.mu.RUnlock()

	return &plugin.Rendering{
		Title: "Network",
		Kind:  "metric-strip",
		Props: map[string]any{
			"portfolioSize": len(positions),
			"coInvestors":   partners,
		},
	}, nil
}

func (m *Module) renderDetails(ctx context.Context, req plugin.RenderRequest) (*plugin.Rendering, error) {
	m.mu.RLock()
	positions := m.portfolio[req.EntityID]
	partners := m.coinvest[req.EntityID]
	m.mu.RUnlock()

	companies := make([]map[string]any, 0, len(positions))
	for _, p := range positions {
		companies = append(companies, map[string]any{
			"companyId":   p.companyID,
			"companyName": p.companyName,
			"rounds":      p.rounds,
			"investedUsd": p.investedUSD,
		})
	}

	type partner struct {
		id     string
		shared int
	}
	ranked := make([]partner, 0, len(partners))
	for id, shared := range partners {
		ranked = append(ranked, partner{id: id, shared: shared})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].shared != ranked[j].shared {
			return ranked[i].shared > ranked[j].shared
		}
		return ranked[i].id < ranked[j].id
	})
	coInvestors := make([]map[string]any, 0, len(ranked))
	for _, p := range ranked {
		name := p.id
		if raw, ok := m.catalog.Entity(plugin.EntityInvestor, p.id); ok {
			if inv, ok := raw.(*entity.Investor); ok {
				name = inv.Name
			}
		}
		coInvestors = append(coInvestors, map[string]any{
			"investorId":   p.id,
			"investorName": name,
			"sharedRounds": p.shared,
		})
	}

	return &plugin.Rendering{
		Title: "Portfolio & Co-Investors",
		Kind:  "network",
		Props: map[string]any{
			"portfolio":   companies,
			"coInvestors": coInvestors,
		},
	}, nil
}
