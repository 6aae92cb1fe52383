package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/pkg/mysql"
)

// EnvPrefix prefixes every environment override, e.g. LEDGER_STORAGE_DRIVER
const EnvPrefix = "LEDGER"

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

type Config struct {
	Server     ServerConfig  `mapstructure:"server"`
	Storage    StorageConfig `mapstructure:"storage"`
	Limits     LimitsConfig  `mapstructure:"limits"`
	Seed       SeedConfig    `mapstructure:"seed"`
	ConfigPath string        `mapstructure:"-"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver      string         `mapstructure:"driver"`
	JournalPath string         `mapstructure:"journal_path"` // memory driver only; empty disables the journal
	Postgres    PostgresConfig `mapstructure:"postgres"`
	SQLite      SQLiteConfig   `mapstructure:"sqlite"`
	MySQL       mysql.Config   `mapstructure:"mysql"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LimitsConfig struct {
	MaxAmount            string `mapstructure:"max_amount"`
	MaxNameLength        int    `mapstructure:"max_name_length"`
	MaxDescriptionLength int    `mapstructure:"max_description_length"`
}

// SeedConfig lists accounts created at startup when no account of that name exists
type SeedConfig struct {
	Accounts []SeedAccount `mapstructure:"accounts"`
}

type SeedAccount struct {
	Name           string `mapstructure:"name"`
	OpeningBalance string `mapstructure:"opening_balance"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.journal_path", "")
	v.SetDefault("storage.postgres.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=ledger sslmode=disable")
	v.SetDefault("storage.sqlite.path", "ledger.db")
	v.SetDefault("storage.mysql.host", "localhost")
	v.SetDefault("storage.mysql.port", 3306)
	v.SetDefault("storage.mysql.user", "root")
	v.SetDefault("storage.mysql.password", "")
	v.SetDefault("storage.mysql.db_name", "ledger")
	v.SetDefault("storage.mysql.max_open_conns", 100)
	v.SetDefault("storage.mysql.max_idle_conns", 10)
	v.SetDefault("storage.mysql.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("storage.mysql.max_retries", 10)
	v.SetDefault("storage.mysql.retry_interval", 2*time.Second)
	v.SetDefault("storage.mysql.log_level", "error")

	v.SetDefault("limits.max_amount", "1000000")
	v.SetDefault("limits.max_name_length", domain.MaxAccountNameLength)
	v.SetDefault("limits.max_description_length", domain.MaxDescriptionLength)
}

// Load reads configuration from path (or ./config.yaml when path is empty and the file exists),
// applies LEDGER_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}

	maxAmount, err := decimal.NewFromString(c.Limits.MaxAmount)
	if err != nil {
		return fmt.Errorf("invalid limits.max_amount: %w", err)
	}
	if !maxAmount.IsPositive() {
		return errors.New("limits.max_amount must be positive")
	}
	if err := checkStorableAmount("limits.max_amount", maxAmount); err != nil {
		return err
	}
	if c.Limits.MaxNameLength <= 0 {
		return errors.New("limits.max_name_length must be positive")
	}
	if c.Limits.MaxNameLength > domain.MaxAccountNameLength {
		return fmt.Errorf("limits.max_name_length must not exceed %d", domain.MaxAccountNameLength)
	}
	if c.Limits.MaxDescriptionLength <= 0 {
		return errors.New("limits.max_description_length must be positive")
	}
	if c.Limits.MaxDescriptionLength > domain.MaxDescriptionLength {
		return fmt.Errorf("limits.max_description_length must not exceed %d", domain.MaxDescriptionLength)
	}

	for _, account := range c.Seed.Accounts {
		if strings.TrimSpace(account.Name) == "" {
			return errors.New("seed account name must not be empty")
		}
		if account.OpeningBalance == "" {
			continue
		}
		balance, err := decimal.NewFromString(account.OpeningBalance)
		if err != nil {
			return fmt.Errorf("invalid opening balance for seed account %q: %w", account.Name, err)
		}
		if balance.IsNegative() {
			return fmt.Errorf("opening balance for seed account %q must not be negative", account.Name)
		}
		if err := checkStorableAmount(fmt.Sprintf("opening balance for seed account %q", account.Name), balance); err != nil {
			return err
		}
	}

	return nil
}

// maxStorableAmount is the first value past what decimal(38,10) holds
var maxStorableAmount = decimal.New(1, domain.MaxAmountPrecision-domain.MaxAmountScale)

func checkStorableAmount(field string, amount decimal.Decimal) error {
	if amount.Exponent() < -domain.MaxAmountScale {
		return fmt.Errorf("%s must not have more than %d decimal places", field, domain.MaxAmountScale)
	}
	if amount.Exponent() > domain.MaxAmountPrecision || amount.GreaterThanOrEqual(maxStorableAmount) {
		return fmt.Errorf("%s must be less than %s", field, maxStorableAmount)
	}
	return nil
}

// MaxAmountValue returns limits.max_amount as a decimal. It assumes Validate has passed.
func (l LimitsConfig) MaxAmountValue() decimal.Decimal {
	return decimal.RequireFromString(l.MaxAmount)
}
