package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const HelpMessage = `
Credential-issuing authentication service.

Usage:
  auth [--config-path config.yaml]
  auth --help

Configuration is read from the environment, optionally seeded from a YAML file
whose nested keys map to upper-cased, underscore-joined variable names.

Main variables:
  AUTH_JWT_SECRET        HS256 signing secret (required in production)
  AUTH_ACCESS_TOKEN_TTL  token lifetime (default 60m)
  AUTH_BCRYPT_COST       bcrypt work factor (default 10)
  STORE_DRIVER           sqlite | postgres | memory (default sqlite)
  STORE_SQLITE_PATH      sqlite database file (default users.db)
  HTTP_PORT              listen port (default 8000)
  RABBITMQ_ENABLED       publish audit events (default false)
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

const mask = "********"

// PrintConfig writes the effective configuration with secrets masked.
func PrintConfig(w io.Writer, cfg *Config) {
	var b strings.Builder

	fmt.Fprintf(&b, "service: %s (log level %s)\n", cfg.ServiceName, cfg.LogLevel)
	fmt.Fprintf(&b, "http: %s\n", cfg.HTTP.Addr())
	fmt.Fprintf(&b, "store: %s\n", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case "sqlite":
		fmt.Fprintf(&b, "  sqlite path: %s\n", cfg.Store.SQLitePath)
	case "postgres":
		fmt.Fprintf(&b, "  postgres: %s@%s:%s/%s password=%s\n",
			cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, mask)
	}
	fmt.Fprintf(&b, "auth: ttl=%s leeway=%s bcrypt_cost=%d issuer=%q secret=%s\n",
		cfg.Auth.AccessTokenTTL, cfg.Auth.TokenLeeway, cfg.Auth.BcryptCost, cfg.Auth.Issuer, mask)
	if cfg.RabbitMQ.Enabled {
		fmt.Fprintf(&b, "audit: amqp://%s@%s:%s exchange=%s\n",
			cfg.RabbitMQ.User, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.Exchange)
	}

	io.WriteString(w, b.String())
}
