package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papertradehq/paper_trading_app/internal/apperrors"
	"github.com/papertradehq/paper_trading_app/internal/core/domain"
	portsrepo "github.com/papertradehq/paper_trading_app/internal/core/ports/repositories"
	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
)

// ledgerService implements the LedgerSvcFacade interface. It owns the single
// account and guards it with one lock: Buy, Sell, RefreshValuation and Reset
// take the write lock for their full duration, queries take the read lock.
type ledgerService struct {
	BaseService
	repo portsrepo.LedgerRepository

	mu      sync.RWMutex
	account domain.Account

	now func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithClock overrides the wall clock, used by tests to pin "today".
func WithClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService restores the account from the repository, or creates a
// fresh one at initialBalance when no snapshot has been persisted yet.
func NewLedgerService(ctx context.Context, repo portsrepo.LedgerRepository, initialBalance decimal.Decimal, options ...LedgerServiceOption) (portssvc.LedgerSvcFacade, error) {
	svc := &ledgerService{
		repo: repo,
		now:  time.Now,
	}

	for _, option := range options {
		option(svc)
	}

	stored, err := repo.LoadAccount(ctx)
	switch {
	case err == nil:
		svc.account = stored.Clone()
		svc.LogInfo(ctx, "Restored account from repository",
			slog.Int("trade_count", len(svc.account.Trades)))
	case errors.Is(err, apperrors.ErrNotFound):
		svc.account = domain.NewAccount(initialBalance)
		svc.LogInfo(ctx, "Created fresh account",
			slog.String("initial_balance", initialBalance.String()))
	default:
		return nil, fmt.Errorf("failed to restore account: %w", err)
	}

	return svc, nil
}

// Ensure ledgerService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateOrder rejects malformed input before any precondition check runs.
func validateOrder(symbol string, price, quantity decimal.Decimal) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("%w: symbol must not be empty", apperrors.ErrInvalidInput)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", apperrors.ErrInvalidInput, price.String())
	}
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", apperrors.ErrInvalidInput, quantity.String())
	}
	return nil
}

func (s *ledgerService) Buy(ctx context.Context, symbol string, price, quantity decimal.Decimal) (*domain.Trade, error) {
	if err := validateOrder(symbol, price, quantity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cost := price.Mul(quantity)
	if s.account.CashBalance.LessThan(cost) {
		err := &apperrors.InsufficientFundsError{
			Symbol:        symbol,
			RequiredCash:  cost,
			AvailableCash: s.account.CashBalance,
		}
		s.LogInfo(ctx, "Buy order rejected",
			slog.String("symbol", symbol),
			slog.String("required", cost.String()),
			slog.String("available", s.account.CashBalance.String()))
		return nil, err
	}

	now := s.now()
	trade := domain.Trade{
		TradeID:    uuid.NewString(),
		Side:       domain.Buy,
		Symbol:     symbol,
		Price:      price,
		Quantity:   quantity,
		Notional:   cost,
		ExecutedAt: now,
	}

	s.account.CashBalance = s.account.CashBalance.Sub(cost)

	// Re-weight the average cost across the old position and this buy.
	holding := s.account.Holdings[symbol]
	newQuantity := holding.Quantity.Add(quantity)
	totalCost := holding.AverageCost.Mul(holding.Quantity).Add(cost)
	holding.AverageCost = totalCost.Div(newQuantity)
	holding.Quantity = newQuantity
	s.account.Holdings[symbol] = holding

	s.account.Trades = append([]domain.Trade{trade}, s.account.Trades...)
	s.account.LastUpdatedAt = now

	s.persistLocked(ctx)

	s.LogInfo(ctx, "Buy order executed",
		slog.String("trade_id", trade.TradeID),
		slog.String("symbol", symbol),
		slog.String("notional", cost.String()))
	return &trade, nil
}

func (s *ledgerService) Sell(ctx context.Context, symbol string, price, quantity decimal.Decimal) (*domain.Trade, error) {
	if err := validateOrder(symbol, price, quantity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	holding, held := s.account.Holdings[symbol]
	if !held || holding.Quantity.LessThan(quantity) {
		err := &apperrors.InsufficientHoldingsError{
			Symbol:    symbol,
			Requested: quantity,
			Held:      holding.Quantity,
		}
		s.LogInfo(ctx, "Sell order rejected",
			slog.String("symbol", symbol),
			slog.String("requested", quantity.String()),
			slog.String("held", holding.Quantity.String()))
		return nil, err
	}

	now := s.now()
	proceeds := price.Mul(quantity)
	trade := domain.Trade{
		TradeID:    uuid.NewString(),
		Side:       domain.Sell,
		Symbol:     symbol,
		Price:      price,
		Quantity:   quantity,
		Notional:   proceeds,
		ExecutedAt: now,
	}

	s.account.CashBalance = s.account.CashBalance.Add(proceeds)

	// Sells reduce the position at an unchanged average cost. A position
	// reduced to zero is removed, never kept as an explicit zero entry.
	holding.Quantity = holding.Quantity.Sub(quantity)
	if holding.Quantity.IsZero() {
		delete(s.account.Holdings, symbol)
	} else {
		s.account.Holdings[symbol] = holding
	}

	s.account.Trades = append([]domain.Trade{trade}, s.account.Trades...)
	s.account.LastUpdatedAt = now

	s.persistLocked(ctx)

	s.LogInfo(ctx, "Sell order executed",
		slog.String("trade_id", trade.TradeID),
		slog.String("symbol", symbol),
		slog.String("notional", proceeds.String()))
	return &trade, nil
}

func (s *ledgerService) RefreshValuation(ctx context.Context, prices map[string]decimal.Decimal) domain.Valuation {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Holdings without a quote in the snapshot contribute nothing to the
	// invested value for this refresh.
	invested := decimal.Zero
	for symbol, holding := range s.account.Holdings {
		if price, ok := prices[symbol]; ok {
			invested = invested.Add(holding.Quantity.Mul(price))
		}
	}

	now := s.now()
	s.account.PortfolioValue = invested
	netWorth := s.account.TotalNetWorth()

	// At most one history entry per calendar day: a repeated refresh on the
	// same date overwrites that day's value in place.
	today := now.Format(domain.DateFormat)
	history := s.account.NetWorthHistory
	if n := len(history); n > 0 && history[n-1].Date == today {
		history[n-1].Value = netWorth
	} else {
		s.account.NetWorthHistory = append(history, domain.NetWorthPoint{Date: today, Value: netWorth})
	}
	s.account.LastUpdatedAt = now

	s.persistLocked(ctx)

	s.LogDebug(ctx, "Valuation refreshed",
		slog.String("portfolio_value", invested.String()),
		slog.String("net_worth", netWorth.String()))
	return domain.Valuation{
		PortfolioValue: invested,
		NetWorth:       netWorth,
		AsOf:           now,
	}
}

func (s *ledgerService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.account = domain.NewAccount(s.account.InitialBalance)
	s.persistLocked(ctx)

	s.LogInfo(ctx, "Account reset",
		slog.String("initial_balance", s.account.InitialBalance.String()))
	return nil
}

func (s *ledgerService) Portfolio(ctx context.Context) domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.Clone()
}

func (s *ledgerService) ListTrades(ctx context.Context, limit, offset int) []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.account.Trades
	if offset < 0 {
		offset = 0
	}
	if offset >= len(trades) {
		return []domain.Trade{}
	}
	end := len(trades)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page := make([]domain.Trade, end-offset)
	copy(page, trades[offset:end])
	return page
}

func (s *ledgerService) NetWorthHistory(ctx context.Context) []domain.NetWorthPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]domain.NetWorthPoint, len(s.account.NetWorthHistory))
	copy(history, s.account.NetWorthHistory)
	return history
}

func (s *ledgerService) TotalNetWorth(ctx context.Context) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.TotalNetWorth()
}

func (s *ledgerService) AllTimePnL(ctx context.Context) (decimal.Decimal, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.AllTimePnL(), s.account.AllTimePnLPercent()
}

func (s *ledgerService) UnrealizedPnL(ctx context.Context, symbol string, currentPrice decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(symbol) == "" {
		return decimal.Zero, fmt.Errorf("%w: symbol must not be empty", apperrors.ErrInvalidInput)
	}
	if !currentPrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: price must be positive, got %s", apperrors.ErrInvalidInput, currentPrice.String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	holding, held := s.account.Holdings[symbol]
	if !held {
		return decimal.Zero, fmt.Errorf("no holding for symbol %s: %w", symbol, apperrors.ErrNotFound)
	}
	return currentPrice.Sub(holding.AverageCost).Mul(holding.Quantity), nil
}

// persistLocked writes the current snapshot through the repository. The caller
// must hold the write lock. The in-memory account stays authoritative: a
// failed write is logged and the mutation is not rolled back.
func (s *ledgerService) persistLocked(ctx context.Context) {
	if err := s.repo.SaveAccount(ctx, s.account.Clone()); err != nil {
		s.LogError(ctx, err, "Failed to persist account snapshot")
	}
}
