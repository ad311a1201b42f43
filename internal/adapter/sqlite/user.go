package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/metrics"
)

const driverName = "sqlite"

// UserRepo is the SQLite credential store.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts u. The insert and the uniqueness check are one statement,
// so concurrent registrations of the same username cannot both succeed.
func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) (err error) {
	defer func(start time.Time) {
		metrics.RecordStoreQuery(driverName, "create_user", ignoreExists(err), time.Since(start))
	}(time.Now())

	const q = `
		INSERT INTO users (username, hashed_password, full_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING;
	`

	res, err := r.db.Writer.ExecContext(ctx, q, u.Username, u.HashedPassword, u.FullName, u.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user: rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrUserExists
	}
	return nil
}

// GetUser fetches by username. Returns (nil, nil) if no record exists.
func (r *UserRepo) GetUser(ctx context.Context, username string) (_ *models.User, err error) {
	defer func(start time.Time) {
		metrics.RecordStoreQuery(driverName, "get_user", err, time.Since(start))
	}(time.Now())

	const q = `
		SELECT username, hashed_password, full_name, created_at
		FROM users
		WHERE username = ?;
	`

	var (
		u         models.User
		createdAt int64
	)
	err = r.db.Reader.QueryRowContext(ctx, q, username).Scan(&u.Username, &u.HashedPassword, &u.FullName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}

// Close releases the underlying database.
func (r *UserRepo) Close() error {
	return r.db.Close()
}

// ignoreExists keeps duplicate-username outcomes out of the store error rate.
func ignoreExists(err error) error {
	if errors.Is(err, types.ErrUserExists) {
		return nil
	}
	return err
}
