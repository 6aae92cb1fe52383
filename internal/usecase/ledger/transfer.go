package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// TransferInput represents the input for moving money between two accounts
type TransferInput struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string // Optional, shared by both legs
}

// TransferResult holds both legs of a transfer in call order
type TransferResult struct {
	Withdrawal *domain.Transaction
	Deposit    *domain.Transaction
}

// Transfer moves Amount from one account to another as a withdrawal leg and a deposit leg
// Logic:
//  1. Lock both accounts in a fixed order
//  2. Fetch source then destination (AccountNotFoundError if either is missing)
//  3. Check funds on the source before any write (InsufficientFundsError)
//  4. Commit both legs concurrently
//  5. If exactly one leg committed, reverse it with a corrective entry
func (s *Service) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	unlock := s.locks.lock(input.FromAccountID, input.ToAccountID)
	defer unlock()

	from, err := s.loadAccount(ctx, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := s.loadAccount(ctx, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	withdrawal := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   from.ID,
		Type:        domain.TransactionTypeWithdrawal,
		Amount:      input.Amount,
		Description: input.Description,
		Timestamp:   now,
	}
	deposit := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   to.ID,
		Type:        domain.TransactionTypeDeposit,
		Amount:      input.Amount,
		Description: input.Description,
		Timestamp:   now,
	}

	if err := checkFunds(from, withdrawal); err != nil {
		return nil, err
	}

	if from.ID == to.ID {
		return s.transferWithinAccount(ctx, from, withdrawal, deposit)
	}

	var (
		g                        errgroup.Group
		withdrawnTo, depositedTo *domain.Account
		withdrawErr, depositErr  error
	)
	g.Go(func() error {
		withdrawnTo, withdrawErr = s.commit(ctx, from, withdrawal)
		return withdrawErr
	})
	g.Go(func() error {
		depositedTo, depositErr = s.commit(ctx, to, deposit)
		return depositErr
	})
	if err := g.Wait(); err == nil {
		return &TransferResult{Withdrawal: withdrawal, Deposit: deposit}, nil
	}

	switch {
	case withdrawErr == nil:
		return nil, s.reverse(ctx, withdrawnTo, withdrawal, depositErr)
	case depositErr == nil:
		return nil, s.reverse(ctx, depositedTo, deposit, withdrawErr)
	default:
		return nil, errors.Join(withdrawErr, depositErr)
	}
}

// transferWithinAccount applies both legs to the same account one after the other
func (s *Service) transferWithinAccount(
	ctx context.Context,
	account *domain.Account,
	withdrawal, deposit *domain.Transaction,
) (*TransferResult, error) {
	afterWithdrawal, err := s.commit(ctx, account, withdrawal)
	if err != nil {
		return nil, err
	}
	if _, err := s.commit(ctx, afterWithdrawal, deposit); err != nil {
		return nil, s.reverse(ctx, afterWithdrawal, withdrawal, err)
	}
	return &TransferResult{Withdrawal: withdrawal, Deposit: deposit}, nil
}

// reverse records a corrective entry undoing a committed leg and returns cause,
// joined with the reversal failure if the corrective entry could not be written.
// account is the state of the leg's account right after the leg committed.
// The reversal is written even when ctx is done.
func (s *Service) reverse(ctx context.Context, account *domain.Account, leg *domain.Transaction, cause error) error {
	ctx = context.WithoutCancel(ctx)
	correction := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   leg.AccountID,
		Type:        leg.Type.Opposite(),
		Amount:      leg.Amount,
		Description: "reversal of " + leg.ID.String(),
		Timestamp:   s.Clock.Now(),
	}
	if _, err := s.commit(ctx, account, correction); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reverse transaction %s: %w", leg.ID, err))
	}
	return cause
}
