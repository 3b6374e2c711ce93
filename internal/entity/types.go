// Package entity supplies the startup/funding domain data the platform
// serves: companies, investors, and funding rounds. The plugin system treats
// these payloads as opaque; profile pages and plugin components are the
// consumers.
package entity

import "time"

// FundingRound is one financing event for a company.
type FundingRound struct {
	ID          string    `yaml:"id" json:"id"`
	Round       string    `yaml:"round" json:"round"` // e.g. "Seed", "Series A"
	AmountUSD   float64   `yaml:"amountUsd" json:"amountUsd"`
	AnnouncedAt time.Time `yaml:"announcedAt" json:"announcedAt"`
	Investors   []string  `yaml:"investors" json:"investors"` // investor ids
}

// Company is a startup profile with its nested funding history.
type Company struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Sector      string         `yaml:"sector" json:"sector"`
	Stage       string         `yaml:"stage" json:"stage"`
	FoundedYear int            `yaml:"foundedYear" json:"foundedYear"`
	HQ          string         `yaml:"hq" json:"hq"`
	Website     string         `yaml:"website" json:"website"`
	Rounds      []FundingRound `yaml:"rounds" json:"rounds"`
}

// TotalRaisedUSD sums all funding rounds.
func (c *Company) TotalRaisedUSD() float64 {
	var total float64
	for _, r := range c.Rounds {
		total += r.AmountUSD
	}
	return total
}

// LatestRound returns the most recently announced round, or nil.
func (c *Company) LatestRound() *FundingRound {
	var latest *FundingRound
	for i := range c.Rounds {
		r := &c.Rounds[i]
		if latest == nil || r.AnnouncedAt.After(latest.AnnouncedAt) {
			latest = r
		}
	}
	return latest
}

// Investor is an investor profile.
type Investor struct {
	ID    string   `yaml:"id" json:"id"`
	Name  string   `yaml:"name" json:"name"`
	Type  string   `yaml:"type" json:"type"` // e.g. "vc", "angel", "corporate"
	Focus []string `yaml:"focus" json:"focus"`
	HQ    string   `yaml:"hq" json:"hq"`
}

// Investment is a derived record linking an investor to a company round.
type Investment struct {
	CompanyID   string    `json:"companyId"`
	CompanyName string    `json:"companyName"`
	RoundID     string    `json:"roundId"`
	Round       string    `json:"round"`
	AmountUSD   float64   `json:"amountUsd"`
	AnnouncedAt time.Time `json:"announcedAt"`
}
