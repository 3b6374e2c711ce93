package entity

import "time"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultSeed returns the built-in demo dataset, used when no seed file is
// configured and throughout the test suite.
func DefaultSeed() Seed {
	return Seed{
		Companies: []Company{
			{
				ID:          "acme",
				Name:        "Acme Robotics",
				Description: "Warehouse automation robots",
				Sector:      "robotics",
				Stage:       "series-b",
				FoundedYear: 2019,
				HQ:          "Boston, MA",
				Website:     "https://acme-robotics.example",
				Rounds: []FundingRound{
					{ID: "acme-seed", Round: "Seed", AmountUSD: 2_500_000, AnnouncedAt: day(2020, time.March, 12), Investors: []string{"northwind-ventures", "jane-ellison"}},
					{ID: "acme-a", Round: "Series A", AmountUSD: 14_000_000, AnnouncedAt: day(2021, time.June, 1), Investors: []string{"northwind-ventures", "meridian-capital"}},
					{ID: "acme-b", Round: "Series B", AmountUSD: 40_000_000, AnnouncedAt: day(2023, time.February, 8), Investors: []string{"meridian-capital", "orbital-growth"}},
				},
			},
			{
				ID:          "lumen-bio",
				Name:        "Lumen Bio",
				Description: "Protein design for rare diseases",
				Sector:      "biotech",
				Stage:       "series-a",
				FoundedYear: 2021,
				HQ:          "San Diego, CA",
				Website:     "https://lumen-bio.example",
				Rounds: []FundingRound{
					{ID: "lumen-seed", Round: "Seed", AmountUSD: 4_000_000, AnnouncedAt: day(2022, time.January, 20), Investors: []string{"meridian-capital"}},
					{ID: "lumen-a", Round: "Series A", AmountUSD: 22_000_000, AnnouncedAt: day(2024, time.May, 30), Investors: []string{"meridian-capital", "helix-partners"}},
				},
			},
			{
				ID:          "ferrostack",
				Name:        "Ferrostack",
				Description: "Grid-scale iron-air batteries",
				Sector:      "energy",
				Stage:       "seed",
				FoundedYear: 2023,
				HQ:          "Austin, TX",
				Website:     "https://ferrostack.example",
				Rounds: []FundingRound{
					{ID: "ferro-pre", Round: "Pre-Seed", AmountUSD: 900_000, AnnouncedAt: day(2023, time.September, 5), Investors: []string{"jane-ellison"}},
					{ID: "ferro-seed", Round: "Seed", AmountUSD: 6_500_000, AnnouncedAt: day(2025, time.April, 17), Investors: []string{"northwind-ventures", "jane-ellison"}},
				},
			},
		},
		Investors: []Investor{
			{ID: "northwind-ventures", Name: "Northwind Ventures", Type: "vc", Focus: []string{"robotics", "energy"}, HQ: "New York, NY"},
			{ID: "meridian-capital", Name: "Meridian Capital", Type: "vc", Focus: []string{"biotech", "robotics"}, HQ: "San Francisco, CA"},
			{ID: "orbital-growth", Name: "Orbital Growth", Type: "vc", Focus: []string{"robotics"}, HQ: "London, UK"},
			{ID: "helix-partners", Name: "Helix Partners", Type: "corporate", Focus: []string{"biotech"}, HQ: "Basel, CH"},
			{ID: "jane-ellison", Name: "Jane Ellison", Type: "angel", Focus: []string{"energy", "robotics"}, HQ: "Boulder, CO"},
		},
	}
}
