package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/domain"
)

type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Add(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, balance, created_at) VALUES (?, ?, ?, ?)`,
		account.ID.String(),
		account.Name,
		account.Balance.String(),
		account.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance, created_at FROM accounts WHERE id = ?`,
		id.String(),
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

func (r *accountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, balance, created_at FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`,
		account.Balance.String(),
		account.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
	}
	return nil
}

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var (
		account    domain.Account
		id         string
		balanceStr string
	)
	if err := row.Scan(&id, &account.Name, &balanceStr, &account.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if account.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse account id: %w", err)
	}
	if account.Balance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	return &account, nil
}
