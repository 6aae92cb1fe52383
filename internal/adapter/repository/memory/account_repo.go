package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	store *Store
}

// Add stores a new account, overwriting any account with the same ID
func (r *accountRepository) Add(ctx context.Context, account *domain.Account) error {
	return r.put(eventAccountAdd, account)
}

// GetByID retrieves a copy of an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.accountsMu.RLock()
	defer r.store.accountsMu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrRecordNotFound)
	}
	return &account, nil
}

// GetAll retrieves copies of every account in creation order
func (r *accountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	r.store.accountsMu.RLock()
	defer r.store.accountsMu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.order))
	for _, id := range r.store.order {
		account := r.store.accounts[id]
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

// Update writes back an account
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.put(eventAccountUpdate, account)
}

func (r *accountRepository) put(kind string, account *domain.Account) error {
	r.store.accountsMu.Lock()
	defer r.store.accountsMu.Unlock()

	if err := r.store.record(event{Kind: kind, Account: newAccountRecord(account)}); err != nil {
		return err
	}
	r.store.putAccount(*account)
	return nil
}

var _ domain.AccountRepository = (*accountRepository)(nil)
