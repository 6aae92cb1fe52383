package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/domain"
)

type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Add(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
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
	return nil
}

func (r *transactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return r.query(ctx,
		`SELECT id, account_id, type, amount, description, timestamp
		 FROM transactions WHERE account_id = ? ORDER BY seq`,
		accountID.String(),
	)
}

func (r *transactionRepository) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	return r.query(ctx,
		`SELECT id, account_id, type, amount, description, timestamp
		 FROM transactions ORDER BY seq`,
	)
}

func (r *transactionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var (
			tx                         domain.Transaction
			id, accountID, txType, amt string
		)
		if err := rows.Scan(&id, &accountID, &txType, &amt, &tx.Description, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if tx.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse transaction id: %w", err)
		}
		if tx.AccountID, err = uuid.Parse(accountID); err != nil {
			return nil, fmt.Errorf("failed to parse account id: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		tx.Type = domain.TransactionType(txType)

		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}
