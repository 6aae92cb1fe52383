package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
)

// OpeningBalanceDescription is attached to the deposit that funds a seeded account
const OpeningBalanceDescription = "opening balance"

// SeedAccount defines an account to be seeded
type SeedAccount struct {
	Name           string
	OpeningBalance decimal.Decimal
}

// Ledger is the subset of the ledger service the seeder needs
type Ledger interface {
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	CreateAccount(ctx context.Context, name string) (*domain.Account, error)
	RecordTransaction(ctx context.Context, input ledger.RecordTransactionInput) (*domain.Transaction, error)
	GetTransactionHistory(ctx context.Context, accountID uuid.UUID) ([]domain.TransactionSummary, error)
}

// AccountSeeder handles seeding of configured accounts
type AccountSeeder struct {
	ledger   Ledger
	accounts []SeedAccount
}

// NewAccountSeeder creates a new AccountSeeder instance
func NewAccountSeeder(l Ledger, accounts []SeedAccount) *AccountSeeder {
	return &AccountSeeder{
		ledger:   l,
		accounts: accounts,
	}
}

// Seed ensures every configured account exists.
// Accounts are matched by name; a missing one is created and, if it has an
// opening balance, funded with a single deposit. An existing account with a
// zero balance and no history is funded as well, so a run that created the
// account but failed before the deposit is completed by the next one.
// It returns the accounts it created.
func (s *AccountSeeder) Seed(ctx context.Context) ([]*domain.Account, error) {
	if len(s.accounts) == 0 {
		return nil, nil
	}

	existing, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	byName := make(map[string]*domain.Account, len(existing))
	for _, account := range existing {
		if _, ok := byName[account.Name]; !ok {
			byName[account.Name] = account
		}
	}

	seen := make(map[string]struct{}, len(s.accounts))
	var created []*domain.Account
	for _, seed := range s.accounts {
		if _, ok := seen[seed.Name]; ok {
			continue
		}
		seen[seed.Name] = struct{}{}

		if account, ok := byName[seed.Name]; ok {
			if err := s.fundIfUnfunded(ctx, account, seed); err != nil {
				return created, err
			}
			continue
		}

		account, err := s.ledger.CreateAccount(ctx, seed.Name)
		if err != nil {
			return created, fmt.Errorf("failed to seed account %q: %w", seed.Name, err)
		}

		if err := s.fund(ctx, account, seed); err != nil {
			return created, err
		}

		created = append(created, account)
	}

	return created, nil
}

// fundIfUnfunded deposits the opening balance into an account that has never
// moved any money.
func (s *AccountSeeder) fundIfUnfunded(ctx context.Context, account *domain.Account, seed SeedAccount) error {
	if !seed.OpeningBalance.IsPositive() || !account.Balance.IsZero() {
		return nil
	}

	history, err := s.ledger.GetTransactionHistory(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("failed to read history of seeded account %q: %w", seed.Name, err)
	}
	if len(history) > 0 {
		return nil
	}

	return s.fund(ctx, account, seed)
}

func (s *AccountSeeder) fund(ctx context.Context, account *domain.Account, seed SeedAccount) error {
	if !seed.OpeningBalance.IsPositive() {
		return nil
	}

	_, err := s.ledger.RecordTransaction(ctx, ledger.RecordTransactionInput{
		AccountID:   account.ID,
		Type:        domain.TransactionTypeDeposit,
		Amount:      seed.OpeningBalance,
		Description: OpeningBalanceDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to fund seeded account %q: %w", seed.Name, err)
	}
	account.Balance = seed.OpeningBalance
	return nil
}
