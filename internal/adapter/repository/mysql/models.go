package mysql

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/ledger-backend/internal/domain"
)

// accountRow maps the accounts table
type accountRow struct {
	Seq       int64           `gorm:"primaryKey;autoIncrement"`
	ID        string          `gorm:"type:char(36);uniqueIndex;not null"`
	Name      string          `gorm:"size:100;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(38,10);not null"`
	CreatedAt time.Time       `gorm:"precision:6;not null"`
}

func (*accountRow) TableName() string {
	return "accounts"
}

// transactionRow maps the transactions table
type transactionRow struct {
	Seq         int64           `gorm:"primaryKey;autoIncrement"`
	ID          string          `gorm:"type:char(36);uniqueIndex;not null"`
	AccountID   string          `gorm:"type:char(36);index;not null"`
	Type        string          `gorm:"size:16;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(38,10);not null"`
	Description string          `gorm:"size:500;not null;default:''"`
	Timestamp   time.Time       `gorm:"precision:6;not null"`
}

func (*transactionRow) TableName() string {
	return "transactions"
}

func newAccountRow(a *domain.Account) *accountRow {
	return &accountRow{
		ID:        a.ID.String(),
		Name:      a.Name,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

func (r *accountRow) toDomain() (*domain.Account, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:        id,
		Name:      r.Name,
		Balance:   r.Balance,
		CreatedAt: r.CreatedAt,
	}, nil
}

func newTransactionRow(tx *domain.Transaction) *transactionRow {
	return &transactionRow{
		ID:          tx.ID.String(),
		AccountID:   tx.AccountID.String(),
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Timestamp:   tx.Timestamp,
	}
}

func (r *transactionRow) toDomain() (*domain.Transaction, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := uuid.Parse(r.AccountID)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        domain.TransactionType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Timestamp:   r.Timestamp,
	}, nil
}
