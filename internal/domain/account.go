package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAccountNameLength is the widest account name, in characters, every store can hold
const MaxAccountNameLength = 100

// Account represents an account entity in the domain layer
type Account struct {
	ID        uuid.UUID
	Name      string
	Balance   decimal.Decimal // Sum of deposits minus sum of withdrawals
	CreatedAt time.Time
}

// AccountBalance is a point-in-time view of an account balance
type AccountBalance struct {
	AccountID uuid.UUID
	Name      string
	Balance   decimal.Decimal
	AsOf      time.Time
}

// Apply returns the balance that results from applying tx to the account.
// It does not check for sufficient funds.
func (a *Account) Apply(tx *Transaction) decimal.Decimal {
	if tx.Type == TransactionTypeWithdrawal {
		return a.Balance.Sub(tx.Amount)
	}
	return a.Balance.Add(tx.Amount)
}

// CanWithdraw reports whether amount can be withdrawn without overdrawing the account
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(a.Balance)
}
