package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence operations.
// Add and Update overwrite the slot for the account ID.
type AccountRepository interface {
	// Add stores a new account
	Add(ctx context.Context, account *Account) error

	// GetByID retrieves an account by its ID.
	// Returns an error matching ErrRecordNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetAll retrieves every account
	GetAll(ctx context.Context) ([]*Account, error)

	// Update writes back an existing account
	Update(ctx context.Context, account *Account) error
}

// TransactionRepository defines the interface for transaction persistence operations.
// It is append-only: there is no update or delete.
type TransactionRepository interface {
	// Add appends a new transaction
	Add(ctx context.Context, tx *Transaction) error

	// GetByAccountID retrieves the transactions of one account in insertion order
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)

	// GetAll retrieves every transaction in insertion order
	GetAll(ctx context.Context) ([]*Transaction, error)
}

// TransactionCommitter writes an account's new balance and appends the transaction that produced it
// as one atomic unit: either both are stored or neither is.
type TransactionCommitter interface {
	// Commit stores account's balance and appends tx.
	// Returns an error matching ErrRecordNotFound if the account does not exist.
	Commit(ctx context.Context, account *Account, tx *Transaction) error
}
