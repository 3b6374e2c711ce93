package entity

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"launchboard/pkg/plugin"
)

// Seed is the on-disk shape of the catalog data (seed.yaml).
type Seed struct {
	Companies []Company  `yaml:"companies"`
	Investors []Investor `yaml:"investors"`
}

// Catalog is an in-memory, read-only view of the platform's entity data.
// It satisfies plugin.Catalog so modules can look entities up without
// importing the storage details.
type Catalog struct {
	companies map[string]*Company
	investors map[string]*Investor

	companyIDs  []string
	investorIDs []string

	logger *zap.Logger
}

var _ plugin.Catalog = (*Catalog)(nil)

// NewCatalog builds a catalog from seed data. Duplicate ids keep the first
// occurrence and are logged.
func NewCatalog(seed Seed, logger *zap.Logger) *Catalog {
	c := &Catalog{
		companies: make(map[string]*Company, len(seed.Companies)),
		investors: make(map[string]*Investor, len(seed.Investors)),
		logger:    logger.Named("catalog"),
	}

	for i := range seed.Companies {
		co := seed.Companies[i]
		if _, exists := c.companies[co.ID]; exists {
			c.logger.Warn("Duplicate company id in seed, keeping first", zap.String("id", co.ID))
			continue
		}
		c.companies[co.ID] = &co
		c.companyIDs = append(c.companyIDs, co.ID)
	}

	for i := range seed.Investors {
		inv := seed.Investors[i]
		if _, exists := c.investors[inv.ID]; exists {
			c.logger.Warn("Duplicate investor id in seed, keeping first", zap.String("id", inv.ID))
			continue
		}
		c.investors[inv.ID] = &inv
		c.investorIDs = append(c.investorIDs, inv.ID)
	}

	sort.Strings(c.companyIDs)
	sort.Strings(c.investorIDs)

	c.logger.Info("Catalog loaded",
		zap.Int("companies", len(c.companyIDs)),
		zap.Int("investors", len(c.investorIDs)))

	return c
}

// LoadCatalog reads seed data from a YAML file. An empty path loads the
// built-in default seed.
func LoadCatalog(path string, logger *zap.Logger) (*Catalog, error) {
	if path == "" {
		return NewCatalog(DefaultSeed(), logger), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return NewCatalog(seed, logger), nil
}

// Company returns a company by id.
func (c *Catalog) Company(id string) (*Company, bool) {
	co, ok := c.companies[id]
	return co, ok
}

// Investor returns an investor by id.
func (c *Catalog) Investor(id string) (*Investor, bool) {
	inv, ok := c.investors[id]
	return inv, ok
}

// Companies returns all companies sorted by id.
func (c *Catalog) Companies() []*Company {
	result := make([]*Company, 0, len(c.companyIDs))
	for _, id := range c.companyIDs {
		result = append(result, c.companies[id])
	}
	return result
}

// Investors returns all investors sorted by id.
func (c *Catalog) Investors() []*Investor {
	result := make([]*Investor, 0, len(c.investorIDs))
	for _, id := range c.investorIDs {
		result = append(result, c.investors[id])
	}
	return result
}

// InvestmentsOf returns the derived investment history of an investor,
// newest first.
func (c *Catalog) InvestmentsOf(investorID string) []Investment {
	var result []Investment
	for _, id := range c.companyIDs {
		co := c.companies[id]
		for _, r := range co.Rounds {
			for _, inv := range r.Investors {
				if inv != investorID {
					continue
				}
				result = append(result, Investment{
					CompanyID:   co.ID,
					CompanyName: co.Name,
					RoundID:     r.ID,
					Round:       r.Round,
					AmountUSD:   r.AmountUSD,
					AnnouncedAt: r.AnnouncedAt,
				})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AnnouncedAt.After(result[j].AnnouncedAt)
	})
	return result
}

// Entity implements plugin.Catalog. Global lookups have no payload.
func (c *Catalog) Entity(entityType plugin.EntityType, entityID string) (any, bool) {
	switch entityType {
	case plugin.EntityCompany:
		co, ok := c.Company(entityID)
		if !ok {
			return nil, false
		}
		return co, true
	case plugin.EntityInvestor:
		inv, ok := c.Investor(entityID)
		if !ok {
			return nil, false
		}
		return inv, true
	}
	return nil, false
}

// EntityIDs implements plugin.Catalog.
func (c *Catalog) EntityIDs(entityType plugin.EntityType) []string {
	var src []string
	switch entityType {
	case plugin.EntityCompany:
		src = c.companyIDs
	case plugin.EntityInvestor:
		src = c.investorIDs
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
