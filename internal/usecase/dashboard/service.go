package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// Discrepancy is an account whose stored balance differs from the sum of its history
type Discrepancy struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
	Expected  decimal.Decimal
}

// SummaryResult represents the ledger-wide totals
type SummaryResult struct {
	AccountCount     int
	TransactionCount int
	TotalBalance     decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	Discrepancies    []Discrepancy
}

// Balanced reports whether every account balance matches its history
func (r *SummaryResult) Balanced() bool {
	return len(r.Discrepancies) == 0
}

// DashboardService computes read-only totals over the whole ledger
type DashboardService struct {
	AccountRepo     domain.AccountRepository
	TransactionRepo domain.TransactionRepository
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
) *DashboardService {
	return &DashboardService{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
	}
}

// GetSummary totals balances and movements and reconciles every account against its history.
// Logic:
//   - TotalBalance: Sum of all account balances
//   - TotalDeposits / TotalWithdrawals: Sum of amounts per transaction type
//   - Discrepancies: accounts where balance != deposits - withdrawals
//
// The result is not a snapshot: writes that land between the two reads can show up as discrepancies.
func (s *DashboardService) GetSummary(ctx context.Context) (*SummaryResult, error) {
	// 1. Get all accounts and sum their balances
	accounts, err := s.AccountRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	// 2. Get all transactions and sum them per account
	transactions, err := s.TransactionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	result := &SummaryResult{
		AccountCount:     len(accounts),
		TransactionCount: len(transactions),
		TotalBalance:     decimal.Zero,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}

	expected := make(map[uuid.UUID]decimal.Decimal, len(accounts))
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionTypeDeposit:
			result.TotalDeposits = result.TotalDeposits.Add(tx.Amount)
		case domain.TransactionTypeWithdrawal:
			result.TotalWithdrawals = result.TotalWithdrawals.Add(tx.Amount)
		}
		expected[tx.AccountID] = expected[tx.AccountID].Add(tx.SignedAmount())
	}

	// 3. Compare each balance with its history
	for _, account := range accounts {
		result.TotalBalance = result.TotalBalance.Add(account.Balance)

		want := expected[account.ID]
		if !account.Balance.Equal(want) {
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				AccountID: account.ID,
				Balance:   account.Balance,
				Expected:  want,
			})
		}
	}

	return result, nil
}
