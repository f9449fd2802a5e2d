package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/papertradehq/paper_trading_app/internal/apperrors"
	"github.com/papertradehq/paper_trading_app/internal/core/domain"
	portsrepo "github.com/papertradehq/paper_trading_app/internal/core/ports/repositories"
)

// snapshotID keys the single account row. The engine manages one account;
// the column exists so the schema can grow to multiple accounts later.
const snapshotID = "primary"

// PgxLedgerRepository stores the account snapshot as a JSONB blob in postgres.
type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new repository for account snapshots.
func NewLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{pool: pool}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// SaveAccount replaces the stored snapshot with the given account.
func (r *PgxLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	blob, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account snapshot: %w", err)
	}

	query := `
		INSERT INTO paper_accounts (snapshot_id, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_id)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, snapshotID, blob, time.Now()); err != nil {
		return fmt.Errorf("failed to save account snapshot: %w", err)
	}
	return nil
}

// LoadAccount returns the stored snapshot, or apperrors.ErrNotFound when the
// account has never been persisted.
func (r *PgxLedgerRepository) LoadAccount(ctx context.Context) (*domain.Account, error) {
	query := `SELECT snapshot FROM paper_accounts WHERE snapshot_id = $1;`

	var blob []byte
	err := r.pool.QueryRow(ctx, query, snapshotID).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no account snapshot stored: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load account snapshot: %w", err)
	}

	var account domain.Account
	if err := json.Unmarshal(blob, &account); err != nil {
		return nil, fmt.Errorf("failed to decode account snapshot: %w", err)
	}
	if account.Holdings == nil {
		account.Holdings = make(map[string]domain.Holding)
	}
	return &account, nil
}
