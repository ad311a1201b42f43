package auth

import (
	"context"
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
)

// CredentialStore is the durable username -> credential record mapping.
// GetUser returns (nil, nil) when the user does not exist. CreateUser must be
// an atomic insert that fails with types.ErrUserExists on a duplicate username.
type CredentialStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hashed string) bool
}

type TokenProvider interface {
	Issue(ctx context.Context, subject string, ttl time.Duration) (*models.AccessToken, error)
	Verify(ctx context.Context, token string) (*models.Claims, error)
}

type AuditPublisher interface {
	PublishAuthEvent(ctx context.Context, event models.AuthEvent) error
}
