package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/domain"
)

// RecordTransactionInput represents the input for recording a deposit or withdrawal
type RecordTransactionInput struct {
	AccountID   uuid.UUID
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string // Optional
}

// Service is the transaction-recording engine.
// It owns the rule that an account balance and the account's transaction history
// stay reconciled, and serializes every balance mutation per account.
type Service struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
	Clock           domain.Clock

	// Committer, when set, writes a balance and its transaction atomically.
	// Without one the engine writes them in sequence and restores the balance if the append fails.
	Committer domain.TransactionCommitter

	locks *accountLocks
}

// Option configures a Service
type Option func(*Service)

// WithCommitter makes the Service commit balance and transaction through c
func WithCommitter(c domain.TransactionCommitter) Option {
	return func(s *Service) {
		s.Committer = c
	}
}

// NewService creates a new ledger Service instance.
// The Service must be shared by every caller touching the same repositories.
func NewService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	clock domain.Clock,
	opts ...Option,
) *Service {
	s := &Service{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		Clock:           clock,
		locks:           newAccountLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount creates an account with a zero balance.
// The name is validated by the caller.
func (s *Service) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	account := &domain.Account{
		ID:        uuid.New(),
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: s.Clock.Now(),
	}

	if err := s.AccountRepo.Add(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account. A missing account yields (nil, nil).
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountBalance returns the balance of an account as of the current clock reading.
// A missing account yields (nil, nil).
func (s *Service) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (*domain.AccountBalance, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil || account == nil {
		return nil, err
	}

	return &domain.AccountBalance{
		AccountID: account.ID,
		Name:      account.Name,
		Balance:   account.Balance,
		AsOf:      s.Clock.Now(),
	}, nil
}

// ListAccounts retrieves every account
func (s *Service) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.AccountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// RecordTransaction applies a deposit or withdrawal to an account
// Logic:
//  1. Validate type and amount
//  2. Lock the account for the whole read-compare-write sequence
//  3. Fetch the account (AccountNotFoundError if missing)
//  4. Reject withdrawals larger than the balance (InsufficientFundsError)
//  5. Write back the new balance and append the transaction as one unit
func (s *Service) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(input.AccountID)
	defer unlock()

	account, err := s.loadAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := checkFunds(account, tx); err != nil {
		return nil, err
	}

	tx.Timestamp = s.Clock.Now()
	if _, err := s.commit(ctx, account, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// GetTransactionHistory returns the transactions of an account, most recent first.
// Transactions with equal timestamps keep their insertion order.
func (s *Service) GetTransactionHistory(ctx context.Context, accountID uuid.UUID) ([]domain.TransactionSummary, error) {
	if _, err := s.loadAccount(ctx, accountID); err != nil {
		return nil, err
	}

	txs, err := s.TransactionRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	sorted := make([]*domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	history := make([]domain.TransactionSummary, 0, len(sorted))
	for _, tx := range sorted {
		history = append(history, tx.Summary())
	}
	return history, nil
}

// loadAccount fetches an account for a command, translating absence into AccountNotFoundError
func (s *Service) loadAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, &domain.AccountNotFoundError{AccountID: accountID}
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// commit writes the new balance and appends tx as one unit.
// Without a Committer the append follows the balance write, and a failed append restores
// the previous balance even if ctx is already done.
// The caller must hold the account lock.
func (s *Service) commit(ctx context.Context, account *domain.Account, tx *domain.Transaction) (*domain.Account, error) {
	updated := *account
	updated.Balance = account.Apply(tx)

	if s.Committer != nil {
		if err := s.Committer.Commit(ctx, &updated, tx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &updated, nil
	}

	if err := s.AccountRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update account balance: %w", err)
	}

	if err := s.TransactionRepo.Add(ctx, tx); err != nil {
		err = fmt.Errorf("failed to record transaction: %w", err)
		if rbErr := s.AccountRepo.Update(context.WithoutCancel(ctx), account); rbErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to restore account balance: %w", rbErr))
		}
		return nil, err
	}

	return &updated, nil
}

func checkFunds(account *domain.Account, tx *domain.Transaction) error {
	if tx.Type == domain.TransactionTypeWithdrawal && !account.CanWithdraw(tx.Amount) {
		return &domain.InsufficientFundsError{
			AccountID: account.ID,
			Balance:   account.Balance,
			Amount:    tx.Amount,
		}
	}
	return nil
}
