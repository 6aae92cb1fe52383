package grpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
)

// Amounts travel as decimal strings so no precision is lost on the wire.

// Timestamp is a point in time that encodes as an RFC 3339 string, the
// canonical JSON form of google.protobuf.Timestamp.
type Timestamp struct {
	ts *timestamppb.Timestamp
}

func newTimestamp(t time.Time) *Timestamp {
	return &Timestamp{ts: timestamppb.New(t)}
}

// AsTime returns the timestamp as a time.Time in UTC.
func (t *Timestamp) AsTime() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.ts.AsTime()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.ts == nil {
		return []byte("null"), nil
	}
	data, err := protojson.Marshal(t.ts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	return data, nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	ts := &timestamppb.Timestamp{}
	if err := protojson.Unmarshal(data, ts); err != nil {
		return fmt.Errorf("failed to unmarshal timestamp: %w", err)
	}
	t.ts = ts
	return nil
}

type Account struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	Balance   string     `json:"balance"`
	CreatedAt *Timestamp `json:"created_at"`
}

type Transaction struct {
	Id          string     `json:"id"`
	AccountId   string     `json:"account_id"`
	Type        string     `json:"type"`
	Amount      string     `json:"amount"`
	Description string     `json:"description"`
	Timestamp   *Timestamp `json:"timestamp"`
}

type CreateAccountRequest struct {
	Name string `json:"name"`
}

type CreateAccountResponse struct {
	Account *Account `json:"account"`
}

type GetAccountRequest struct {
	AccountId string `json:"account_id"`
}

type GetAccountResponse struct {
	Account *Account `json:"account"`
}

type GetAccountBalanceRequest struct {
	AccountId string `json:"account_id"`
}

type GetAccountBalanceResponse struct {
	AccountId   string     `json:"account_id"`
	Name        string     `json:"name"`
	Balance     string     `json:"balance"`
	LastUpdated *Timestamp `json:"last_updated"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type RecordTransactionRequest struct {
	AccountId   string `json:"account_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type RecordTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type GetTransactionHistoryRequest struct {
	AccountId string `json:"account_id"`
}

type GetTransactionHistoryResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type TransferRequest struct {
	FromAccountId string `json:"from_account_id"`
	ToAccountId   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

type TransferResponse struct {
	Withdrawal *Transaction `json:"withdrawal"`
	Deposit    *Transaction `json:"deposit"`
}

type GetLedgerSummaryRequest struct{}

type Discrepancy struct {
	AccountId string `json:"account_id"`
	Balance   string `json:"balance"`
	Expected  string `json:"expected"`
}

type GetLedgerSummaryResponse struct {
	AccountCount     int64          `json:"account_count"`
	TransactionCount int64          `json:"transaction_count"`
	TotalBalance     string         `json:"total_balance"`
	TotalDeposits    string         `json:"total_deposits"`
	TotalWithdrawals string         `json:"total_withdrawals"`
	Balanced         bool           `json:"balanced"`
	Discrepancies    []*Discrepancy `json:"discrepancies"`
}

// domainAccountToProto converts a domain Account to its wire form
func domainAccountToProto(account *domain.Account) *Account {
	return &Account{
		Id:        account.ID.String(),
		Name:      account.Name,
		Balance:   account.Balance.String(),
		CreatedAt: newTimestamp(account.CreatedAt),
	}
}

// domainTransactionToProto converts a domain Transaction to its wire form
func domainTransactionToProto(tx *domain.Transaction) *Transaction {
	return &Transaction{
		Id:          tx.ID.String(),
		AccountId:   tx.AccountID.String(),
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		Timestamp:   newTimestamp(tx.Timestamp),
	}
}

func summaryToProto(accountID string, s domain.TransactionSummary) *Transaction {
	return &Transaction{
		Id:          s.ID.String(),
		AccountId:   accountID,
		Type:        string(s.Type),
		Amount:      s.Amount.String(),
		Description: s.Description,
		Timestamp:   newTimestamp(s.Timestamp),
	}
}

func transferResultToProto(result *ledger.TransferResult) *TransferResponse {
	return &TransferResponse{
		Withdrawal: domainTransactionToProto(result.Withdrawal),
		Deposit:    domainTransactionToProto(result.Deposit),
	}
}

func ledgerSummaryToProto(result *dashboard.SummaryResult) *GetLedgerSummaryResponse {
	discrepancies := make([]*Discrepancy, 0, len(result.Discrepancies))
	for _, d := range result.Discrepancies {
		discrepancies = append(discrepancies, &Discrepancy{
			AccountId: d.AccountID.String(),
			Balance:   d.Balance.String(),
			Expected:  d.Expected.String(),
		})
	}

	return &GetLedgerSummaryResponse{
		AccountCount:     int64(result.AccountCount),
		TransactionCount: int64(result.TransactionCount),
		TotalBalance:     result.TotalBalance.String(),
		TotalDeposits:    result.TotalDeposits.String(),
		TotalWithdrawals: result.TotalWithdrawals.String(),
		Balanced:         result.Balanced(),
		Discrepancies:    discrepancies,
	}
}
