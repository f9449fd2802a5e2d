package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/papertradehq/paper_trading_app/internal/core/ports/repositories"
)

// NewRepositoryProvider creates a provider with all postgres-backed repositories.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: NewLedgerRepository(pool),
	}
}
