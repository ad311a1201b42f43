package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/auth?sslmode=disable", "pgx5://u:p@localhost:5432/auth?sslmode=disable"},
		{"postgresql://u:p@db/auth", "pgx5://u:p@db/auth"},
		{"pgx5://already", "pgx5://already"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrateURL(tt.in))
	}
}

func TestWithPoolLimits(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/auth")
	if err != nil {
		t.Fatal(err)
	}
	defaultMin := cfg.MinConns

	WithPoolLimits(7, 0, time.Minute, 0)(cfg)

	assert.Equal(t, int32(7), cfg.MaxConns)
	assert.Equal(t, defaultMin, cfg.MinConns)
	assert.Equal(t, time.Minute, cfg.MaxConnLifetime)
}
