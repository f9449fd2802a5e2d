package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
)

// quoteService is the in-process quote board. Callers stage a full price
// snapshot here; a valuation refresh then reads it without any I/O inside
// the account lock.
type quoteService struct {
	BaseService

	mu     sync.RWMutex
	quotes map[string]decimal.Decimal
}

// NewQuoteService creates an empty quote board.
func NewQuoteService() portssvc.QuoteSvcFacade {
	return &quoteService{
		quotes: make(map[string]decimal.Decimal),
	}
}

// Ensure quoteService implements the QuoteSvcFacade interface
var _ portssvc.QuoteSvcFacade = (*quoteService)(nil)

// Replace swaps the whole board. Non-positive prices are dropped rather than
// stored, so a later refresh can never value a holding at a bogus price.
func (s *quoteService) Replace(ctx context.Context, prices map[string]decimal.Decimal) {
	next := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		if price.IsPositive() {
			next[symbol] = price
		}
	}

	s.mu.Lock()
	s.quotes = next
	s.mu.Unlock()

	s.LogDebug(ctx, "Quote board replaced", slog.Int("symbol_count", len(next)))
}

func (s *quoteService) Snapshot(ctx context.Context) map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(s.quotes))
	for symbol, price := range s.quotes {
		out[symbol] = price
	}
	return out
}
