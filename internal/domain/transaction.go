package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// ParseTransactionType parses a transaction type name, ignoring case
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// Opposite returns the type that reverses t
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionTypeDeposit {
		return TransactionTypeWithdrawal
	}
	return TransactionTypeDeposit
}

// Storage bounds shared by every backend: descriptions fit VARCHAR(500) and
// amounts and balances fit decimal(38,10).
const (
	MaxDescriptionLength = 500
	MaxAmountPrecision   = 38
	MaxAmountScale       = 10
)

// Transaction represents a single movement recorded against one account.
// Transactions are append-only: once stored they are never edited or deleted.
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal // ABSOLUTE VALUE (Always Positive)
	Description string
	Timestamp   time.Time
}

// TransactionSummary is the history view of a transaction
type TransactionSummary struct {
	ID          uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Timestamp   time.Time
}

// Summary returns the history view of t
func (t *Transaction) Summary() TransactionSummary {
	return TransactionSummary{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		Timestamp:   t.Timestamp,
	}
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, string(t.Type))
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// SignedAmount returns the amount with the sign implied by the type
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}
