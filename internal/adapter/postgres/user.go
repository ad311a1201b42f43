package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"github.com/Temutjin2k/auth-service/pkg/metrics"
	postgresclient "github.com/Temutjin2k/auth-service/pkg/postgres"
)

const driverName = "postgres"

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// CreateUser inserts a user row. Returns types.ErrUserExists when the username is taken.
func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) (err error) {
	const op = "UserRepo.CreateUser"
	defer func(start time.Time) {
		metrics.RecordStoreQuery(driverName, "create_user", ignoreExists(err), time.Since(start))
	}(time.Now())

	if u == nil {
		return errors.New("nil user")
	}

	const q = `
		INSERT INTO users (username, hashed_password, full_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING;
	`

	tag, err := r.db.Exec(ctx, q, u.Username, u.HashedPassword, u.FullName, u.CreatedAt)
	if err != nil {
		if postgresclient.IsUniqueViolation(err) {
			return types.ErrUserExists
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if tag.RowsAffected() == 0 {
		return types.ErrUserExists
	}
	return nil
}

// GetUser fetches by username. Returns (nil, nil) if no record exists.
func (r *UserRepo) GetUser(ctx context.Context, username string) (_ *models.User, err error) {
	const op = "UserRepo.GetUser"
	defer func(start time.Time) {
		metrics.RecordStoreQuery(driverName, "get_user", err, time.Since(start))
	}(time.Now())

	const q = `
		SELECT username, hashed_password, full_name, created_at
		FROM users
		WHERE username = $1;
	`

	var u models.User
	err = r.db.QueryRow(ctx, q, username).Scan(
		&u.Username,
		&u.HashedPassword,
		&u.FullName,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return &u, nil
}

func ignoreExists(err error) error {
	if errors.Is(err, types.ErrUserExists) {
		return nil
	}
	return err
}
