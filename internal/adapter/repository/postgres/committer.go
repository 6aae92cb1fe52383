package postgres

import (
	"context"
	"fmt"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// committer implements domain.TransactionCommitter
type committer struct {
	db *DB
}

// NewCommitter creates a committer that writes the balance and the transaction in one database transaction
func NewCommitter(db *DB) domain.TransactionCommitter {
	return &committer{db: db}
}

// Commit updates the account balance and inserts the transaction record atomically
func (c *committer) Commit(ctx context.Context, account *domain.Account, tx *domain.Transaction) error {
	// Start a database transaction
	dbTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Write the new balance
	updateQuery := `
		UPDATE accounts
		SET balance = $1
		WHERE id = $2
	`

	result, err := dbTx.ExecContext(ctx, updateQuery, account.Balance.String(), account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
	}

	// Append the transaction record
	insertQuery := `
		INSERT INTO transactions (id, account_id, type, amount, description, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = dbTx.ExecContext(ctx, insertQuery,
		tx.ID,
		tx.AccountID,
		string(tx.Type),
		tx.Amount.String(),
		tx.Description,
		tx.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Commit the transaction
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
