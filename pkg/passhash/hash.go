package passhash

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes is the largest input bcrypt consumes. Longer secrets are
// truncated to this many bytes, both when hashing and when verifying.
const MaxSecretBytes = 72

// Hasher hashes secrets with bcrypt.
// Aim for 100-300 ms per hash on production hardware when choosing the cost.
type Hasher struct {
	cost    int
	log     logger.Logger
	observe func(time.Duration)
}

type Option func(*Hasher)

// WithLogger reports truncation metadata at debug level.
func WithLogger(log logger.Logger) Option {
	return func(h *Hasher) {
		h.log = log
	}
}

// WithObserver receives the wall time of every Hash and Verify call.
func WithObserver(fn func(time.Duration)) Option {
	return func(h *Hasher) {
		h.observe = fn
	}
}

// New returns a Hasher with the given bcrypt cost, clamped to [bcrypt.MinCost, bcrypt.MaxCost].
func New(cost int, opts ...Option) *Hasher {
	h := &Hasher{cost: clampCost(cost)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Cost returns the effective bcrypt cost.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash creates a salted bcrypt hash of the (possibly truncated) secret.
func (h *Hasher) Hash(secret string) (string, error) {
	defer h.track(time.Now())

	b, err := bcrypt.GenerateFromPassword(h.input(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether secret matches hashed. A malformed hash never matches.
func (h *Hasher) Verify(secret, hashed string) bool {
	defer h.track(time.Now())

	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(secret)) == nil
}

// Truncate applies the byte-length truncation policy to secret.
func Truncate(secret string) string {
	if len(secret) <= MaxSecretBytes {
		return secret
	}
	return secret[:MaxSecretBytes]
}

func (h *Hasher) input(secret string) []byte {
	if len(secret) > MaxSecretBytes && h.log != nil {
		ctx := wrap.WithAction(context.Background(), "hash_input_truncated")
		h.log.Debug(ctx, "secret exceeds hash input limit, truncated", "secret_bytes", len(secret), "limit", MaxSecretBytes)
	}
	return []byte(Truncate(secret))
}

func (h *Hasher) track(start time.Time) {
	if h.observe != nil {
		h.observe(time.Since(start))
	}
}

func clampCost(cost int) int {
	switch {
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	default:
		return cost
	}
}
