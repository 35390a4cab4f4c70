package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
	SSLMode          string
	StatementTimeout time.Duration
}

// DSN returns the pgx connection string. statement_timeout bounds every
// statement, including FOR UPDATE lock waits, so contended transactions
// fail closed instead of hanging.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&options=-c%%20statement_timeout%%3D%d",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
		c.StatementTimeout.Milliseconds(),
	)
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// RedisConfig holds the asynq broker address
type RedisConfig struct {
	Addr string
}

// MarketConfig holds the platform's trading constants
type MarketConfig struct {
	CommissionRate float64 // platform cut of every order total
	MinOrderKg     float64 // smallest fixed-price purchase accepted
}

// RetryConfig bounds the store retry wrapper for transient failures
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Config holds all application configuration
type Config struct {
	DB         DBConfig
	Server     ServerConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Market     MarketConfig
	Retry      RetryConfig
	InvoiceDir string
	LogLevel   string
}

var cfg *Config

// Load reads configuration from the environment, with .env as an optional
// overlay for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using environment variables")
	}

	cfg = &Config{
		DB: DBConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", "postgres"),
			DBName:           getEnv("DB_NAME", "agrimandi"),
			SSLMode:          getEnv("DB_SSL_MODE", "disable"),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "supersecret"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 72),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		},
		Market: MarketConfig{
			CommissionRate: getEnvAsFloat("COMMISSION_RATE", 0.05),
			MinOrderKg:     getEnvAsFloat("MIN_ORDER_KG", 50),
		},
		Retry: RetryConfig{
			MaxRetries:      getEnvAsInt("DB_RETRY_MAX", 2),
			InitialInterval: getEnvAsDuration("DB_RETRY_INITIAL", 100*time.Millisecond),
			MaxInterval:     getEnvAsDuration("DB_RETRY_MAX_INTERVAL", 1*time.Second),
		},
		InvoiceDir: getEnv("INVOICE_DIR", "./documents/invoices"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
