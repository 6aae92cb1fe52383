package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/pkg/mysql"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the ledger tables
func AutoMigrate(ctx context.Context, client *mysql.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(&accountRow{}, &transactionRow{}); err != nil {
		return fmt.Errorf("failed to migrate mysql schema: %w", err)
	}
	return nil
}

type accountRepository struct {
	client *mysql.Client
}

// NewAccountRepository creates a GORM backed account repository
func NewAccountRepository(client *mysql.Client) domain.AccountRepository {
	return &accountRepository{client: client}
}

func (r *accountRepository) Add(ctx context.Context, account *domain.Account) error {
	if err := r.client.DB().WithContext(ctx).Create(newAccountRow(account)).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var row accountRow
	err := r.client.DB().WithContext(ctx).Where("id = ?", id.String()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	account, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	var rows []accountRow
	if err := r.client.DB().WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		account, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	result := r.client.DB().WithContext(ctx).
		Model(&accountRow{}).
		Where("id = ?", account.ID.String()).
		Update("balance", account.Balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update account balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
	}
	return nil
}

type transactionRepository struct {
	client *mysql.Client
}

// NewTransactionRepository creates a GORM backed transaction repository
func NewTransactionRepository(client *mysql.Client) domain.TransactionRepository {
	return &transactionRepository{client: client}
}

func (r *transactionRepository) Add(ctx context.Context, tx *domain.Transaction) error {
	if err := r.client.DB().WithContext(ctx).Create(newTransactionRow(tx)).Error; err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return r.find(r.client.DB().WithContext(ctx).Where("account_id = ?", accountID.String()))
}

func (r *transactionRepository) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	return r.find(r.client.DB().WithContext(ctx))
}

func (r *transactionRepository) find(query *gorm.DB) ([]*domain.Transaction, error) {
	var rows []transactionRow
	if err := query.Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

type committer struct {
	client *mysql.Client
}

// NewCommitter creates a committer that writes the balance and the transaction in one database transaction
func NewCommitter(client *mysql.Client) domain.TransactionCommitter {
	return &committer{client: client}
}

func (c *committer) Commit(ctx context.Context, account *domain.Account, tx *domain.Transaction) error {
	return c.client.DB().WithContext(ctx).Transaction(func(db *gorm.DB) error {
		result := db.Model(&accountRow{}).
			Where("id = ?", account.ID.String()).
			Update("balance", account.Balance)
		if result.Error != nil {
			return fmt.Errorf("failed to update account balance: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("account %s: %w", account.ID, domain.ErrRecordNotFound)
		}

		if err := db.Create(newTransactionRow(tx)).Error; err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	})
}
