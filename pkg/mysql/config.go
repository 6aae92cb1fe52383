package mysql

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the MySQL connection and pool settings
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`

	// Connection pool, see https://github.com/go-sql-driver/mysql#important-settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Connect retries
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`

	// GORM log level: "silent", "error", "warn", "info"
	LogLevel string `mapstructure:"log_level"`
}

// DSN builds the driver connection string.
// Times are read and written in UTC and UPDATE reports matched rather than changed rows.
func (c *Config) DSN() string {
	params := url.Values{}
	params.Set("charset", "utf8mb4")
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	params.Set("clientFoundRows", "true")

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		params.Encode(),
	)
}
