// Package file implements the ledger repository on top of a single JSON file,
// giving the service a zero-infrastructure persistence default.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/papertradehq/paper_trading_app/internal/apperrors"
	"github.com/papertradehq/paper_trading_app/internal/core/domain"
	portsrepo "github.com/papertradehq/paper_trading_app/internal/core/ports/repositories"
)

// LedgerRepository persists the account snapshot as a JSON file. Writes go
// through a temp file plus rename so a crash mid-write never corrupts the
// stored snapshot.
type LedgerRepository struct {
	path string
	mu   sync.Mutex
}

// NewLedgerRepository creates a file-backed repository at the given path.
// Parent directories are created on the first save.
func NewLedgerRepository(path string) *LedgerRepository {
	return &LedgerRepository{path: path}
}

// Ensure LedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*LedgerRepository)(nil)

// SaveAccount replaces the stored snapshot with the given account.
func (r *LedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	blob, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode account snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write account snapshot: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace account snapshot: %w", err)
	}
	return nil
}

// LoadAccount returns the stored snapshot, or apperrors.ErrNotFound when the
// snapshot file does not exist yet.
func (r *LedgerRepository) LoadAccount(ctx context.Context) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no account snapshot at %s: %w", r.path, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read account snapshot: %w", err)
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
