package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation is the result of one valuation refresh against a price snapshot.
type Valuation struct {
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	NetWorth       decimal.Decimal `json:"netWorth"`
	AsOf           time.Time       `json:"asOf"`
}
