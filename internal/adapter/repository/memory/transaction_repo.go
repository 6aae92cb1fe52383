package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	store *Store
}

// Add appends a transaction
func (r *transactionRepository) Add(ctx context.Context, tx *domain.Transaction) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	if err := r.store.record(event{Kind: eventTransactionAdd, Transaction: newTransactionRecord(tx)}); err != nil {
		return err
	}
	r.store.appendTransaction(*tx)
	return nil
}

// GetByAccountID retrieves copies of the transactions of one account in insertion order
func (r *transactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	r.store.txMu.RLock()
	defer r.store.txMu.RUnlock()

	indexes := r.store.byAccount[accountID]
	txs := make([]*domain.Transaction, 0, len(indexes))
	for _, i := range indexes {
		tx := r.store.txs[i]
		txs = append(txs, &tx)
	}
	return txs, nil
}

// GetAll retrieves copies of every transaction in insertion order
func (r *transactionRepository) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	r.store.txMu.RLock()
	defer r.store.txMu.RUnlock()

	txs := make([]*domain.Transaction, 0, len(r.store.txs))
	for i := range r.store.txs {
		tx := r.store.txs[i]
		txs = append(txs, &tx)
	}
	return txs, nil
}

var _ domain.TransactionRepository = (*transactionRepository)(nil)
