package repositories

import (
	"context"

	"github.com/papertradehq/paper_trading_app/internal/core/domain"
)

// LedgerRepository persists and restores the full account snapshot as one
// opaque unit. Implementations must round-trip every field exactly, including
// trade order and the complete net-worth history.
type LedgerRepository interface {
	// SaveAccount durably replaces the stored snapshot with the given account.
	SaveAccount(ctx context.Context, account domain.Account) error
	// LoadAccount returns the stored snapshot, or apperrors.ErrNotFound when
	// nothing has been persisted yet.
	LoadAccount(ctx context.Context) (*domain.Account, error)
}

// RepositoryProvider bundles the repositories handed to the service layer.
type RepositoryProvider struct {
	LedgerRepo LedgerRepository
}
