package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/configparser"
	"github.com/Temutjin2k/auth-service/pkg/logger"
)

// DefaultJWTSecret is the development signing secret. The service warns on startup when it is in use.
const DefaultJWTSecret = "WILL_CHANGE_IN_PRODUCTION"

// Errors
var (
	ErrEmptySecret      = errors.New("auth jwt secret must not be empty")
	ErrInvalidTTL       = errors.New("auth access token ttl must be at least 1s")
	ErrInvalidLeeway    = errors.New("auth token leeway must not be negative")
	ErrUnknownDriver    = errors.New("unknown store driver")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrEmptySQLitePath  = errors.New("sqlite path must not be empty")
	ErrEmptyAuditTarget = errors.New("rabbitmq exchange must not be empty when audit is enabled")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" envDefault:"auth-service"`
		LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`

		HTTP     HTTPConfig
		Store    StoreConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Auth     AuthConfig
	}

	HTTPConfig struct {
		Host              string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
		Port              string        `env:"HTTP_PORT" envDefault:"8000"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	StoreConfig struct {
		Driver     types.StoreDriver `env:"STORE_DRIVER" envDefault:"sqlite"`
		SQLitePath string            `env:"STORE_SQLITE_PATH" envDefault:"users.db"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" envDefault:"localhost"`
		Port     string `env:"DATABASE_PORT" envDefault:"5432"`
		User     string `env:"DATABASE_USER" envDefault:"auth_user"`
		Password string `env:"DATABASE_PASSWORD" envDefault:"auth_pass"`
		Database string `env:"DATABASE_DATABASE" envDefault:"auth_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" envDefault:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" envDefault:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" envDefault:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" envDefault:"5m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
		Host     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
		Port     string `env:"RABBITMQ_PORT" envDefault:"5672"`
		User     string `env:"RABBITMQ_USER" envDefault:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"auth_topic"`
	}

	AuthConfig struct {
		JWTSecret      string        `env:"AUTH_JWT_SECRET" envDefault:"WILL_CHANGE_IN_PRODUCTION"`
		Issuer         string        `env:"AUTH_JWT_ISSUER"`
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"60m"`
		TokenLeeway    time.Duration `env:"AUTH_TOKEN_LEEWAY" envDefault:"0s"`
		BcryptCost     int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	}
)

// GetDSN returns the postgres connection string.
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// GetDSN returns the amqp connection string.
func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Addr returns host:port for the HTTP listener.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// UsesDefaultSecret reports whether the development signing secret is configured.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// NewConfig loads the optional YAML file at filepath into the environment and parses it.
func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks values that parsing alone cannot.
func (c *Config) Validate() error {
	if !logger.ValidateLogLevel(c.LogLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Auth.JWTSecret == "" {
		return ErrEmptySecret
	}
	if c.Auth.AccessTokenTTL < time.Second {
		return ErrInvalidTTL
	}
	if c.Auth.TokenLeeway < 0 {
		return ErrInvalidLeeway
	}
	if !c.Store.Driver.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	if c.Store.Driver == types.SQLiteStore && c.Store.SQLitePath == "" {
		return ErrEmptySQLitePath
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Exchange == "" {
		return ErrEmptyAuditTarget
	}
	return nil
}
