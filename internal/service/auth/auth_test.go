package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Temutjin2k/auth-service/internal/adapter/memory"
	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	"github.com/Temutjin2k/auth-service/pkg/passhash"
)

type failingStore struct {
	err error
}

func (s failingStore) GetUser(context.Context, string) (*models.User, error) { return nil, s.err }
func (s failingStore) CreateUser(context.Context, *models.User) error { return s.err }

type countingHasher struct {
	PasswordHasher

	mu       sync.Mutex
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(secret string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.PasswordHasher.Hash(secret)
}

func (h *countingHasher) Verify(secret, hashed string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(secret, hashed)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []models.AuthEvent
	err    error
}

func (a *recordingAudit) PublishAuthEvent(_ context.Context, e models.AuthEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return a.err
}

func (a *recordingAudit) eventTypes() []types.AuthEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.AuthEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc    *AuthService
	store  *memory.UserRepo
	tokens *TokenService
	clock  *fakeClock
	audit  *recordingAudit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	store := memory.NewUserRepo()
	tokens := newTestTokens(t, clock)
	audit := &recordingAudit{}

	svc := NewAuthService(store, passhash.New(bcrypt.MinCost), tokens, logger.Nop(), WithAuditPublisher(audit))

	return &fixture{svc: svc, store: store, tokens: tokens, clock: clock, audit: audit}
}

func (f *fixture) register(t *testing.T, username, password, fullName string) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Username: username,
		Password: password,
		FullName: fullName,
	})
	require.NoError(t, err)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice", "secret123", "Alice A")

	tok, err := f.svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, types.BearerToken, tok.Type)
	assert.NotEmpty(t, tok.Token)

	who, err := f.svc.Resolve(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, &models.PublicIdentity{Username: "alice", FullName: "Alice A"}, who)

	_, err = f.svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	u, err := f.store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)

	assert.NotEqual(t, "secret123", u.HashedPassword)
	assert.True(t, strings.HasPrefix(u.HashedPassword, "$2"))
	assert.False(t, u.CreatedAt.IsZero())
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "Alice A")

	_, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Password: "different1",
		FullName: "Someone Else",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.store.Count())

	// the original password still works
	_, err = f.svc.Authenticate(context.Background(), "alice", "secret123")
	assert.NoError(t, err)
}

func TestRegister_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: "secret123"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrConflict):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
	assert.Equal(t, 1, f.store.Count())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   models.RegisterRequest
		field string
	}{
		{"short username", models.RegisterRequest{Username: "al", Password: "secret123"}, "username"},
		{"long username", models.RegisterRequest{Username: strings.Repeat("a", 21), Password: "secret123"}, "username"},
		{"long multibyte username", models.RegisterRequest{Username: strings.Repeat("é", 21), Password: "secret123"}, "username"},
		{"empty username", models.RegisterRequest{Password: "secret123"}, "username"},
		{"short password", models.RegisterRequest{Username: "alice", Password: "12345"}, "password"},
		{"long full name", models.RegisterRequest{Username: "alice", Password: "secret123", FullName: strings.Repeat("n", 101)}, "full_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Errors, tt.field)
			assert.Zero(t, f.store.Count())
		})
	}
}

func TestRegister_BoundaryValuesAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, models.RegisterRequest{Username: "abc", Password: "123456"})
	assert.NoError(t, err)

	_, err = f.svc.Register(ctx, models.RegisterRequest{
		Username: "a.b-c_" + strings.Repeat("z", 14),
		Password: strings.Repeat("p", 4096),
		FullName: strings.Repeat("n", 100),
	})
	assert.NoError(t, err)
}

func TestRegister_AnyUsernameCharacters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, username := range []string{"john doe", "josé", "a@b.io", strings.Repeat("ж", 20)} {
		id, err := f.svc.Register(ctx, models.RegisterRequest{Username: username, Password: "secret123"})
		require.NoError(t, err, username)
		assert.Equal(t, username, id.Username)

		got, err := f.svc.Authenticate(ctx, username, "secret123")
		require.NoError(t, err, username)
		assert.Equal(t, username, got.Username)
	}
	assert.Equal(t, 4, f.store.Count())
}

func TestRegister_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewAuthService(failingStore{err: boom}, passhash.New(bcrypt.MinCost), newTestTokens(t, &fakeClock{t: time.Now()}), logger.Nop())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestAuthenticate_UnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")
	ctx := context.Background()

	_, errUnknown := f.svc.Authenticate(ctx, "bob", "secret123")
	_, errWrong := f.svc.Authenticate(ctx, "alice", "wrong-password")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.ErrorIs(t, errUnknown, ErrUnauthenticated)
	assert.ErrorIs(t, errWrong, ErrUnauthenticated)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthenticate_UnknownUserStillVerifies(t *testing.T) {
	hasher := &countingHasher{PasswordHasher: passhash.New(bcrypt.MinCost)}
	svc := NewAuthService(memory.NewUserRepo(), hasher, newTestTokens(t, &fakeClock{t: time.Now()}), logger.Nop())

	assert.Equal(t, 1, hasher.hashes, "dummy hash prepared at construction")

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 1, hasher.verifies)
	assert.Equal(t, 1, hasher.hashes, "no hashing on the login path")
}

func TestAuthenticate_LongPasswordTruncation(t *testing.T) {
	f := newFixture(t)
	base := strings.Repeat("k", passhash.MaxSecretBytes)
	f.register(t, "alice", base+"-first-suffix", "")

	_, err := f.svc.Authenticate(context.Background(), "alice", base+"-another-suffix")
	assert.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), "alice", base[:len(base)-1])
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	svc := NewAuthService(failingStore{err: errors.New("connection refused")}, passhash.New(bcrypt.MinCost), newTestTokens(t, &fakeClock{t: time.Now()}), logger.Nop())

	_, err := svc.Authenticate(context.Background(), "alice", "secret123")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestLogin_TokenUsesDefaultTTL(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	tok, err := f.svc.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, f.clock.t.Add(f.tokens.DefaultTTL()), tok.ExpiresAt)
}

func TestResolve_ImmediatelyAfterIssue(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "Alice A")

	tok, err := f.tokens.Issue(context.Background(), "alice", 0)
	require.NoError(t, err)

	who, err := f.svc.Resolve(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", who.Username)
}

func TestResolve_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	tok, err := f.tokens.Issue(context.Background(), "alice", -time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Resolve(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_ExpiresAsClockAdvances(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	tok, err := f.svc.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	f.clock.Advance(f.tokens.DefaultTTL() + time.Second)

	_, err = f.svc.Resolve(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_DeletedUser(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	tok, err := f.svc.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteUser(context.Background(), "alice"))

	_, err = f.svc.Resolve(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolve_StoreFailure(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	tokens := newTestTokens(t, clock)
	svc := NewAuthService(failingStore{err: errors.New("timeout")}, passhash.New(bcrypt.MinCost), tokens, logger.Nop())

	tok, err := tokens.Issue(context.Background(), "alice", 0)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestAuditEvents(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "secret123", "")

	_, _ = f.svc.Login(context.Background(), "alice", "nope-nope")
	_, err := f.svc.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)

	assert.Equal(t, []types.AuthEventType{
		types.EventUserRegistered,
		types.EventLoginFailed,
		types.EventLoginSucceeded,
	}, f.audit.eventTypes())

	for _, e := range f.audit.events {
		assert.Equal(t, "alice", e.Username)
		assert.False(t, e.OccurredAt.IsZero())
	}
}

func TestAuditFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	f.audit.err = errors.New("broker down")

	f.register(t, "alice", "secret123", "")

	_, err := f.svc.Login(context.Background(), "alice", "secret123")
	assert.NoError(t, err)
}
