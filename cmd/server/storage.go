package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaogato/ledger-backend/internal/adapter/repository/memory"
	mysqlrepo "github.com/simaogato/ledger-backend/internal/adapter/repository/mysql"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/ledger-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/ledger-backend/internal/config"
	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/pkg/mysql"
	"github.com/simaogato/ledger-backend/pkg/wal"
)

// storage bundles the repositories of one backend with its cleanup
type storage struct {
	Accounts     domain.AccountRepository
	Transactions domain.TransactionRepository
	Committer    domain.TransactionCommitter
	closeFn      func() error
}

func (s *storage) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// openStorage connects the backend named by cfg.Driver
func openStorage(ctx context.Context, cfg config.StorageConfig, applyMigrations bool) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return openMemory(cfg.JournalPath)

	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if applyMigrations {
			if err := db.Migrate(); err != nil {
				return nil, errors.Join(err, db.Close())
			}
		}
		return &storage{
			Accounts:     postgres.NewAccountRepository(db),
			Transactions: postgres.NewTransactionRepository(db),
			Committer:    postgres.NewCommitter(db),
			closeFn:      db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if applyMigrations {
			if err := db.Migrate(); err != nil {
				return nil, errors.Join(err, db.Close())
			}
		}
		return &storage{
			Accounts:     sqlite.NewAccountRepository(db),
			Transactions: sqlite.NewTransactionRepository(db),
			Committer:    sqlite.NewCommitter(db),
			closeFn:      db.Close,
		}, nil

	case config.DriverMySQL:
		client, err := mysql.NewClient(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		if applyMigrations {
			if err := mysqlrepo.AutoMigrate(ctx, client); err != nil {
				return nil, errors.Join(err, client.Close())
			}
		}
		return &storage{
			Accounts:     mysqlrepo.NewAccountRepository(client),
			Transactions: mysqlrepo.NewTransactionRepository(client),
			Committer:    mysqlrepo.NewCommitter(client),
			closeFn:      client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openMemory(journalPath string) (*storage, error) {
	if journalPath == "" {
		store := memory.NewStore()
		return &storage{Accounts: store.Accounts(), Transactions: store.Transactions(), Committer: store.Committer()}, nil
	}

	journal, err := wal.Open(journalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	store, err := memory.OpenStore(journal)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to replay journal: %w", err), journal.Close())
	}

	return &storage{
		Accounts:     store.Accounts(),
		Transactions: store.Transactions(),
		Committer:    store.Committer(),
		closeFn:      journal.Close,
	}, nil
}
