package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound matches any *AccountNotFoundError
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds matches any *InsufficientFundsError
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when an amount is not strictly positive
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidTransactionType is returned for types other than DEPOSIT and WITHDRAWAL
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrRecordNotFound is returned by repositories when a lookup has no result
	ErrRecordNotFound = errors.New("record not found")
)

// AccountNotFoundError reports a command issued against an unknown account
type AccountNotFoundError struct {
	AccountID uuid.UUID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account with ID '%s' was not found", e.AccountID)
}

// Is lets errors.Is(err, ErrAccountNotFound) match
func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// InsufficientFundsError reports a withdrawal larger than the balance at the time of the check
type InsufficientFundsError struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account '%s': current balance %s, withdrawal amount %s",
		e.AccountID, e.Balance.String(), e.Amount.String())
}

// Is lets errors.Is(err, ErrInsufficientFunds) match
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
