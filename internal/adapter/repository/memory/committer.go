package memory

import (
	"context"
	"fmt"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// committer implements domain.TransactionCommitter.
// Both writes go to the journal as a single event so replay never sees half a commit.
type committer struct {
	store *Store
}

func (c *committer) Commit(ctx context.Context, account *domain.Account, tx *domain.Transaction) error {
	c.store.accountsMu.Lock()
	defer c.store.accountsMu.Unlock()
	c.store.txMu.Lock()
	defer c.store.txMu.Unlock()

	if _, ok := c.store.accounts[account.ID]; !ok {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
	}

	e := event{
		Kind:        eventCommit,
		Account:     newAccountRecord(account),
		Transaction: newTransactionRecord(tx),
	}
	if err := c.store.record(e); err != nil {
		return err
	}
	c.store.putAccount(*account)
	c.store.appendTransaction(*tx)
	return nil
}

var _ domain.TransactionCommitter = (*committer)(nil)
