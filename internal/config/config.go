package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Log       LogConfig
	Auth      AuthConfig
	Push      PushConfig
	Challenge ChallengeConfig
	Deposit   DepositConfig
	Bootstrap BootstrapConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"challenge_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// RedisConfig holds the change feed and session revocation backend.
// An empty Addr switches the change feed to the in-process broker.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds session signing configuration.
type AuthConfig struct {
	JWTSecret  string        `envconfig:"AUTH_JWT_SECRET" default:"change-me-in-production"`
	SessionTTL time.Duration `envconfig:"AUTH_SESSION_TTL" default:"72h"`
	BcryptCost int           `envconfig:"AUTH_BCRYPT_COST" default:"10"`
}

// PushConfig holds the push delivery endpoint.
type PushConfig struct {
	Endpoint string        `envconfig:"PUSH_ENDPOINT" default:"https://exp.host/--/api/v2/push/send"`
	Timeout  time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
}

// ChallengeConfig holds the defaults written to the configuration row on first access.
type ChallengeConfig struct {
	DefaultSize int    `envconfig:"CHALLENGE_DEFAULT_SIZE" default:"100"`
	UnitAmount  string `envconfig:"CHALLENGE_UNIT_AMOUNT" default:"1000"`
	Currency    string `envconfig:"CHALLENGE_CURRENCY" default:"MZN"`
}

// DepositConfig is the default deposit descriptor shown to participants.
type DepositConfig struct {
	BankName      string `envconfig:"DEPOSIT_BANK_NAME" default:""`
	AccountName   string `envconfig:"DEPOSIT_ACCOUNT_NAME" default:""`
	AccountNumber string `envconfig:"DEPOSIT_ACCOUNT_NUMBER" default:""`
	NationalID    string `envconfig:"DEPOSIT_NATIONAL_ID" default:""`
	ContactPhone  string `envconfig:"DEPOSIT_CONTACT_PHONE" default:""`
}

// BootstrapConfig seeds the first administrator when the directory is empty.
// Leave Email empty to disable.
type BootstrapConfig struct {
	Email    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL" default:""`
	Password string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD" default:""`
	Name     string `envconfig:"BOOTSTRAP_ADMIN_NAME" default:"Administrator"`
}

// Defaults builds the configuration record used before one is stored.
func (c ChallengeConfig) Defaults(deposit DepositConfig) (model.ChallengeConfig, error) {
	if !model.ValidChallengeSize(c.DefaultSize) {
		return model.ChallengeConfig{}, fmt.Errorf("CHALLENGE_DEFAULT_SIZE %d outside [%d, %d]",
			c.DefaultSize, model.MinChallengeSize, model.MaxChallengeSize)
	}
	unit, err := decimal.NewFromString(c.UnitAmount)
	if err != nil {
		return model.ChallengeConfig{}, fmt.Errorf("CHALLENGE_UNIT_AMOUNT: %w", err)
	}
	if !unit.IsPositive() {
		return model.ChallengeConfig{}, fmt.Errorf("CHALLENGE_UNIT_AMOUNT must be positive, got %s", c.UnitAmount)
	}

	return model.ChallengeConfig{
		ChallengeSize: c.DefaultSize,
		UnitAmount:    unit,
		Currency:      c.Currency,
		Deposit: model.Deposit{
			BankName:      deposit.BankName,
			AccountName:   deposit.AccountName,
			AccountNumber: deposit.AccountNumber,
			NationalID:    deposit.NationalID,
			ContactPhone:  deposit.ContactPhone,
		},
	}, nil
}

// Load parses environment variables into the Config struct.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
