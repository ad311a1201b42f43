package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/logger"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeBroker struct {
	mu        sync.Mutex
	declared  map[string]string
	sent      []published
	failTimes int
	ensureErr error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{declared: map[string]string{}}
}

func (b *fakeBroker) EnsureConnection(context.Context) error { return b.ensureErr }

func (b *fakeBroker) DeclareExchange(name, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.declared[name] = kind
	return nil
}

func (b *fakeBroker) Publish(_ context.Context, exchange, key string, msg amqp.Publishing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failTimes > 0 {
		b.failTimes--
		return errors.New("channel closed")
	}
	b.sent = append(b.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestAuditPublisher_Publish(t *testing.T) {
	broker := newFakeBroker()
	p, err := NewAuditPublisher(broker, "auth_topic", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ExchangeKindTopic, broker.declared["auth_topic"])

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	err = p.PublishAuthEvent(context.Background(), models.AuthEvent{
		Type:       types.EventLoginSucceeded,
		Username:   "alice",
		RequestID:  "req-1",
		OccurredAt: at,
	})
	require.NoError(t, err)

	require.Len(t, broker.sent, 1)
	got := broker.sent[0]
	assert.Equal(t, "auth_topic", got.exchange)
	assert.Equal(t, "user.login_succeeded", got.key)
	assert.Equal(t, "req-1", got.msg.CorrelationId)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "user.login_succeeded", body["type"])
	assert.NotContains(t, body, "password")
}

func TestAuditPublisher_RetriesOnce(t *testing.T) {
	broker := newFakeBroker()
	broker.failTimes = 1
	p, err := NewAuditPublisher(broker, "auth_topic", logger.Nop())
	require.NoError(t, err)

	err = p.PublishAuthEvent(context.Background(), models.AuthEvent{Type: types.EventUserRegistered, Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, broker.sent, 1)
}

func TestAuditPublisher_GivesUp(t *testing.T) {
	broker := newFakeBroker()
	broker.ensureErr = errors.New("dial tcp: connection refused")
	p, err := NewAuditPublisher(broker, "auth_topic", logger.Nop())
	require.NoError(t, err)

	err = p.PublishAuthEvent(context.Background(), models.AuthEvent{Type: types.EventLoginFailed, Username: "alice"})
	assert.ErrorIs(t, err, broker.ensureErr)
	assert.Empty(t, broker.sent)
}

func TestAuditPublisher_IgnoresCallerCancellation(t *testing.T) {
	broker := newFakeBroker()
	p, err := NewAuditPublisher(broker, "auth_topic", logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.PublishAuthEvent(ctx, models.AuthEvent{Type: types.EventUserRegistered, Username: "alice"})
	assert.NoError(t, err)
}
