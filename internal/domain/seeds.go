// internal/domain/seeds.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type stockSeed struct {
	symbol, name, icon, description, sector string
	price, change, changePercent            string
	history                                 []string
}

var stockSeeds = []stockSeed{
	{"PNCL", "PencilCorp", "📝", "Leading manufacturer of eco-friendly writing instruments", "Stationery & Supplies",
		"45.50", "1.20", "2.71", []string{"44", "44.5", "45", "45.5"}},
	{"SNCK", "SnackHub", "🍿", "Premium snacks and refreshments for students", "Food & Beverage",
		"118.30", "-1.40", "-1.17", []string{"120", "119", "118.5", "118.3"}},
	{"STDY", "StudyTech", "💻", "Educational technology and learning platforms", "EdTech",
		"92.00", "5.00", "5.75", []string{"87", "89", "90", "92"}},
	{"BOOK", "BookNest", "📚", "Online bookstore and learning materials", "Retail",
		"67.80", "0.50", "0.74", []string{"67", "67.3", "67.5", "67.8"}},
	{"CAMP", "CampusConnect", "🎓", "Student networking and collaboration platform", "Social Tech",
		"155.20", "-3.10", "-1.96", []string{"158", "156.5", "155.5", "155.2"}},
}

// DefaultStocks returns fresh copies of the instruments seeded at startup.
func DefaultStocks() []*Stock {
	now := time.Now().UTC()
	out := make([]*Stock, 0, len(stockSeeds))
	for _, s := range stockSeeds {
		history := make(PriceHistory, 0, len(s.history))
		for _, h := range s.history {
			history = append(history, decimal.RequireFromString(h))
		}
		out = append(out, &Stock{
			Symbol:        s.symbol,
			Name:          s.name,
			Price:         decimal.RequireFromString(s.price),
			Change:        decimal.RequireFromString(s.change),
			ChangePercent: decimal.RequireFromString(s.changePercent),
			History:       history,
			Icon:          s.icon,
			Description:   s.description,
			Sector:        s.sector,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return out
}
