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
	"github.com/Temutjin2k/auth-service/pkg/metrics"
)

// dummySecret is hashed at construction and verified against when the
// username is unknown, so both rejection paths pay for one hash comparison.
const dummySecret = "dummy-secret-for-unknown-users"

type AuthService struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens TokenProvider
	audit  AuditPublisher
	log    logger.Logger

	dummyHash string
}

type Option func(*AuthService)

// WithAuditPublisher enables audit events. Publish failures never change an outcome.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *AuthService) {
		s.audit = p
	}
}

func NewAuthService(store CredentialStore, hasher PasswordHasher, tokens TokenProvider, log logger.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := hasher.Hash(dummySecret)
	if err != nil {
		log.Warn(context.Background(), "failed to prepare dummy hash", "error", err.Error())
	}
	s.dummyHash = h

	return s
}

// Register validates the input, hashes the password and creates the record.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.PublicIdentity, error) {
	ctx = wrap.WithUsername(wrap.WithAction(ctx, "user_register"), req.Username)

	identity, err := s.register(ctx, req)
	metrics.RecordAuthOperation("register", outcome(err))
	return identity, err
}

func (s *AuthService) register(ctx context.Context, req models.RegisterRequest) (*models.PublicIdentity, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error(ctx, "failed to hash password", err, "password_bytes", len(req.Password))
		return nil, wrap.Error(ctx, fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Username:       req.Username,
		HashedPassword: hashed,
		FullName:       req.FullName,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, types.ErrUserExists) {
			return nil, wrap.Error(ctx, ErrConflict)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}

	s.log.Info(ctx, "user registered")
	s.publish(ctx, types.EventUserRegistered, user.Username)

	return user.Public(), nil
}

// Authenticate turns a username/password pair into a public identity.
// An unknown user and a wrong password are the same ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.PublicIdentity, error) {
	ctx = wrap.WithAction(ctx, "authenticate")

	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}

	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		return nil, wrap.Error(ctx, ErrUnauthenticated)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, wrap.Error(ctx, ErrUnauthenticated)
	}

	return user.Public(), nil
}

// Login authenticates and issues an access token with the default lifetime.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AccessToken, error) {
	ctx = wrap.WithUsername(wrap.WithAction(ctx, "user_login"), username)

	token, err := s.login(ctx, username, password)
	metrics.RecordAuthOperation("login", outcome(err))
	return token, err
}

func (s *AuthService) login(ctx context.Context, username, password string) (*models.AccessToken, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			s.publish(ctx, types.EventLoginFailed, username)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, identity.Username, 0)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrTokenGenerateFail, err))
	}

	s.publish(ctx, types.EventLoginSucceeded, identity.Username)
	return token, nil
}

// Resolve turns a presented token into the identity of an existing user.
// Invalid, expired and orphaned tokens are all ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.PublicIdentity, error) {
	ctx = wrap.WithAction(ctx, "resolve_identity")

	identity, err := s.resolve(ctx, token)
	metrics.RecordAuthOperation("resolve", outcome(err))
	return identity, err
}

func (s *AuthService) resolve(ctx context.Context, token string) (*models.PublicIdentity, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, wrap.Error(ctx, ErrUnauthenticated)
	}

	ctx = wrap.WithUsername(ctx, claims.Subject)

	user, err := s.store.GetUser(ctx, claims.Subject)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}

	if user == nil {
		s.log.Debug(ctx, "token subject no longer exists")
		return nil, wrap.Error(ctx, ErrUnauthenticated)
	}

	return user.Public(), nil
}

func (s *AuthService) publish(ctx context.Context, event types.AuthEventType, username string) {
	if s.audit == nil {
		return
	}

	err := s.audit.PublishAuthEvent(ctx, models.AuthEvent{
		Type:       event,
		Username:   username,
		RequestID:  wrap.FromContext(ctx).RequestID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error(wrap.WithAction(ctx, types.ActionAuditPublishFailed), "failed to publish audit event", err, "event", event.String())
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthenticated):
		return "rejected"
	default:
		return metrics.OutcomeError
	}
}
