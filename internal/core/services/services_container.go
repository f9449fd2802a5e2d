package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	portsrepo "github.com/papertradehq/paper_trading_app/internal/core/ports/repositories"
	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(ctx context.Context, repos portsrepo.RepositoryProvider, initialBalance decimal.Decimal) (*portssvc.ServiceContainer, error) {
	container := &portssvc.ServiceContainer{}

	ledger, err := NewLedgerService(ctx, repos.LedgerRepo, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger service: %w", err)
	}
	container.Ledger = ledger
	container.Quotes = NewQuoteService()

	return container, nil
}
