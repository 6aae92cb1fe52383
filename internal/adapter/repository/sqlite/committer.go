package sqlite

import (
	"context"
	"fmt"

	"github.com/simaogato/ledger-backend/internal/domain"
)

type committer struct {
	db *DB
}

// NewCommitter creates a committer that writes the balance and the transaction in one database transaction
func NewCommitter(db *DB) domain.TransactionCommitter {
	return &committer{db: db}
}

func (c *committer) Commit(ctx context.Context, account *domain.Account, tx *domain.Transaction) error {
	dbTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	result, err := dbTx.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`,
		account.Balance.String(),
		account.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, type, amount, description, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID.String(),
		tx.AccountID.String(),
		string(tx.Type),
		tx.Amount.String(),
		tx.Description,
		tx.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
