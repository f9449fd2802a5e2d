package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-day key used for net-worth history entries.
const DateFormat = "2006-01-02"

// Holding is an open position in one symbol. Quantity is strictly positive;
// a position reduced to zero is removed from the account instead of being
// kept as an explicit zero entry.
type Holding struct {
	Quantity decimal.Decimal `json:"quantity"`
	// AverageCost is the volume-weighted average buy price of the open
	// position. Buys re-weight it; sells leave it unchanged.
	AverageCost decimal.Decimal `json:"averageCost"`
}

// NetWorthPoint is one day's closing valuation of the account.
type NetWorthPoint struct {
	Date  string          `json:"date"` // DateFormat key, at most one point per day
	Value decimal.Decimal `json:"value"`
}

// Account is the full state of one paper-trading account. It is mutated only
// through the ledger service, which guards it with a single lock.
type Account struct {
	InitialBalance  decimal.Decimal    `json:"initialBalance"`
	CashBalance     decimal.Decimal    `json:"cashBalance"`
	Holdings        map[string]Holding `json:"holdings"`
	Trades          []Trade            `json:"trades"` // most-recent-first, append-only
	NetWorthHistory []NetWorthPoint    `json:"netWorthHistory"`
	// PortfolioValue is the invested value computed by the last valuation
	// refresh. Queries use it as-is; they never reach out to a price feed.
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// NewAccount returns a fresh account holding only the initial cash balance.
func NewAccount(initialBalance decimal.Decimal) Account {
	return Account{
		InitialBalance:  initialBalance,
		CashBalance:     initialBalance,
		Holdings:        make(map[string]Holding),
		Trades:          []Trade{},
		NetWorthHistory: []NetWorthPoint{},
		PortfolioValue:  decimal.Zero,
		LastUpdatedAt:   time.Now(),
	}
}

// Clone returns a deep copy of the account, safe to hand out or serialize
// while the original keeps being mutated.
func (a Account) Clone() Account {
	out := a
	out.Holdings = make(map[string]Holding, len(a.Holdings))
	for sym, h := range a.Holdings {
		out.Holdings[sym] = h
	}
	out.Trades = make([]Trade, len(a.Trades))
	copy(out.Trades, a.Trades)
	out.NetWorthHistory = make([]NetWorthPoint, len(a.NetWorthHistory))
	copy(out.NetWorthHistory, a.NetWorthHistory)
	return out
}

// TotalNetWorth is cash plus the last-computed invested value.
func (a Account) TotalNetWorth() decimal.Decimal {
	return a.CashBalance.Add(a.PortfolioValue)
}

// AllTimePnL is the profit or loss against the initial balance.
func (a Account) AllTimePnL() decimal.Decimal {
	return a.TotalNetWorth().Sub(a.InitialBalance)
}

// AllTimePnLPercent is AllTimePnL as a percentage of the initial balance.
// It returns zero for a zero initial balance rather than dividing by it.
func (a Account) AllTimePnLPercent() decimal.Decimal {
	if a.InitialBalance.IsZero() {
		return decimal.Zero
	}
	return a.AllTimePnL().Div(a.InitialBalance).Mul(decimal.NewFromInt(100))
}
