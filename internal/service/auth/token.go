package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
)

// TokenConfig is the immutable signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret     string
	Issuer     string
	DefaultTTL time.Duration
	Leeway     time.Duration
}

// TokenService issues and verifies HS256 access tokens.
//
// Tokens are self-contained: verification needs only the secret and the clock.
// There is no revocation list, so an issued token stays valid until it
// expires, whatever happens to the account in the meantime.
type TokenService struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
	leeway     time.Duration
	now        func() time.Time
	log        logger.Logger
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg TokenConfig, log logger.Logger, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		defaultTTL: cfg.DefaultTTL,
		leeway:     cfg.Leeway,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultTTL returns the lifetime used when Issue is called with ttl == 0.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// MinTTL is the smallest positive lifetime Issue accepts. Expiry is stored in
// whole seconds, so anything shorter could be expired on arrival.
const MinTTL = time.Second

// Issue signs a token for subject that expires ttl from now. A zero ttl means
// the configured default; a negative ttl yields an already expired token.
func (s *TokenService) Issue(ctx context.Context, subject string, ttl time.Duration) (*models.AccessToken, error) {
	ctx = wrap.WithAction(ctx, "issue_token")
	if subject == "" {
		return nil, wrap.Error(ctx, errors.New("token subject is empty"))
	}

	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if ttl > 0 && ttl < MinTTL {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: got %s", ErrTTLTooShort, ttl))
	}

	issuedAt := s.now().UTC()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("sign token: %w", err))
	}

	return &models.AccessToken{
		Token:     signed,
		Type:      types.BearerToken,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm, expiry and issuer. Every failure is
// reported as ErrInvalidToken; the specific reason is only logged.
func (s *TokenService) Verify(ctx context.Context, token string) (*models.Claims, error) {
	ctx = wrap.WithAction(ctx, "verify_token")

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		s.log.Debug(ctx, "token rejected", "reason", rejectReason(err))
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	if claims.Subject == "" {
		s.log.Debug(ctx, "token rejected", "reason", "missing_subject")
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	return claims, nil
}

func rejectReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer"
	default:
		return "invalid"
	}
}
