package services

import (
	"context"

	"github.com/papertradehq/paper_trading_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the only mutation surface of the paper-trading account.
// Display formatting (currency strings, percentages, colors) is the caller's
// job; every query here returns raw values.
type LedgerSvcFacade interface {
	// Buy executes a buy order. It rejects with apperrors.ErrInvalidInput on
	// malformed input and apperrors.ErrInsufficientFunds when the cost exceeds
	// the cash balance. Rejected orders leave the account untouched.
	Buy(ctx context.Context, symbol string, price, quantity decimal.Decimal) (*domain.Trade, error)
	// Sell executes a sell order. It rejects with apperrors.ErrInvalidInput on
	// malformed input and apperrors.ErrInsufficientHoldings when the held
	// quantity is insufficient (including a symbol never held).
	Sell(ctx context.Context, symbol string, price, quantity decimal.Decimal) (*domain.Trade, error)
	// RefreshValuation recomputes the invested value from the given price
	// snapshot and upserts today's net-worth history entry. Symbols missing
	// from the snapshot contribute nothing to the invested value.
	RefreshValuation(ctx context.Context, prices map[string]decimal.Decimal) domain.Valuation
	// Reset unconditionally restores the account to its freshly-created state.
	Reset(ctx context.Context) error

	// Portfolio returns a deep copy of the current account state.
	Portfolio(ctx context.Context) domain.Account
	// ListTrades returns a most-recent-first page of the trade history.
	ListTrades(ctx context.Context, limit, offset int) []domain.Trade
	// NetWorthHistory returns the daily net-worth series in chronological order.
	NetWorthHistory(ctx context.Context) []domain.NetWorthPoint
	// TotalNetWorth is cash plus the last-computed portfolio value.
	TotalNetWorth(ctx context.Context) decimal.Decimal
	// AllTimePnL returns the absolute and percentage P&L against the initial balance.
	AllTimePnL(ctx context.Context) (pnl decimal.Decimal, pct decimal.Decimal)
	// UnrealizedPnL computes (currentPrice - averageCost) × quantity for a held
	// symbol. It returns apperrors.ErrNotFound for a symbol not held.
	UnrealizedPnL(ctx context.Context, symbol string, currentPrice decimal.Decimal) (decimal.Decimal, error)
}

// QuoteSvcFacade is the in-process quote board. It lets callers stage a price
// snapshot ahead of a valuation refresh so the refresh never blocks on I/O.
type QuoteSvcFacade interface {
	// Replace swaps the entire quote board for the given snapshot.
	Replace(ctx context.Context, prices map[string]decimal.Decimal)
	// Snapshot returns a copy of the current quote board.
	Snapshot(ctx context.Context) map[string]decimal.Decimal
}

// ServiceContainer holds the services handed to the HTTP layer.
type ServiceContainer struct {
	Ledger LedgerSvcFacade
	Quotes QuoteSvcFacade
}
