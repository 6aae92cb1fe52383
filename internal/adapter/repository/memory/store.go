// Package memory keeps accounts and transactions in process memory,
// optionally journaling every mutation to a write-ahead log.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// Journal receives every mutation before it is applied in memory
type Journal interface {
	Write(v any) error
}

// Log is a journal that can also replay what was written to it, such as *wal.WAL
type Log interface {
	Journal
	ReadAll(fn func(raw json.RawMessage) error) error
}

const (
	eventAccountAdd     = "account.add"
	eventAccountUpdate  = "account.update"
	eventTransactionAdd = "transaction.add"
	eventCommit         = "ledger.commit"
)

type event struct {
	Kind        string             `json:"kind"`
	Account     *accountRecord     `json:"account,omitempty"`
	Transaction *transactionRecord `json:"transaction,omitempty"`
}

type accountRecord struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

type transactionRecord struct {
	ID          uuid.UUID              `json:"id"`
	AccountID   uuid.UUID              `json:"account_id"`
	Type        domain.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Store holds the account and transaction state shared by both repositories
type Store struct {
	journal Journal

	accountsMu sync.RWMutex
	accounts   map[uuid.UUID]domain.Account
	order      []uuid.UUID

	txMu      sync.RWMutex
	txs       []domain.Transaction
	byAccount map[uuid.UUID][]int
}

// NewStore creates an empty store without a journal
func NewStore() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]domain.Account),
		byAccount: make(map[uuid.UUID][]int),
	}
}

// OpenStore rebuilds a store from the records in log, then journals new mutations to it
func OpenStore(log Log) (*Store, error) {
	s := NewStore()
	err := log.ReadAll(func(raw json.RawMessage) error {
		var e event
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("failed to decode journal event: %w", err)
		}
		return s.apply(e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	s.journal = log
	return s, nil
}

// Accounts returns the account repository backed by s
func (s *Store) Accounts() domain.AccountRepository {
	return &accountRepository{store: s}
}

// Committer returns a committer that updates a balance and appends its transaction atomically
func (s *Store) Committer() domain.TransactionCommitter {
	return &committer{store: s}
}

// Transactions returns the transaction repository backed by s
func (s *Store) Transactions() domain.TransactionRepository {
	return &transactionRepository{store: s}
}

func (s *Store) record(e event) error {
	if s.journal == nil {
		return nil
	}
	if err := s.journal.Write(e); err != nil {
		return fmt.Errorf("failed to journal %s: %w", e.Kind, err)
	}
	return nil
}

func (s *Store) apply(e event) error {
	switch e.Kind {
	case eventAccountAdd, eventAccountUpdate:
		if e.Account == nil {
			return fmt.Errorf("journal event %s has no account", e.Kind)
		}
		s.putAccount(e.Account.toDomain())
	case eventTransactionAdd:
		if e.Transaction == nil {
			return fmt.Errorf("journal event %s has no transaction", e.Kind)
		}
		s.appendTransaction(e.Transaction.toDomain())
	case eventCommit:
		if e.Account == nil || e.Transaction == nil {
			return fmt.Errorf("journal event %s is incomplete", e.Kind)
		}
		s.putAccount(e.Account.toDomain())
		s.appendTransaction(e.Transaction.toDomain())
	default:
		return fmt.Errorf("unknown journal event %q", e.Kind)
	}
	return nil
}

// putAccount requires accountsMu held for writing (or exclusive access during replay)
func (s *Store) putAccount(a domain.Account) {
	if _, ok := s.accounts[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.accounts[a.ID] = a
}

// appendTransaction requires txMu held for writing (or exclusive access during replay)
func (s *Store) appendTransaction(tx domain.Transaction) {
	s.byAccount[tx.AccountID] = append(s.byAccount[tx.AccountID], len(s.txs))
	s.txs = append(s.txs, tx)
}

func newAccountRecord(a *domain.Account) *accountRecord {
	return &accountRecord{ID: a.ID, Name: a.Name, Balance: a.Balance, CreatedAt: a.CreatedAt}
}

func (r *accountRecord) toDomain() domain.Account {
	return domain.Account{ID: r.ID, Name: r.Name, Balance: r.Balance, CreatedAt: r.CreatedAt}
}

func newTransactionRecord(tx *domain.Transaction) *transactionRecord {
	return &transactionRecord{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		Timestamp:   tx.Timestamp,
	}
}

func (r *transactionRecord) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Type:        r.Type,
		Amount:      r.Amount,
		Description: r.Description,
		Timestamp:   r.Timestamp,
	}
}
