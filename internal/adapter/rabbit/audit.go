package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
	"github.com/Temutjin2k/auth-service/pkg/metrics"
)

const (
	ExchangeKindTopic = "topic"

	defaultPublishTimeout = 2 * time.Second
	publishAttempts       = 2
	publishBackoff        = 100 * time.Millisecond
)

// Broker is the subset of the rabbit client the audit publisher needs.
type Broker interface {
	EnsureConnection(ctx context.Context) error
	DeclareExchange(name, kind string) error
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// AuditPublisher sends auth events to a topic exchange, one routing key per
// event type (user.registered, user.login_succeeded, user.login_failed).
type AuditPublisher struct {
	client   Broker
	exchange string
	timeout  time.Duration
	l        logger.Logger
}

func NewAuditPublisher(client Broker, exchange string, l logger.Logger) (*AuditPublisher, error) {
	if err := client.DeclareExchange(exchange, ExchangeKindTopic); err != nil {
		return nil, err
	}

	return &AuditPublisher{
		client:   client,
		exchange: exchange,
		timeout:  defaultPublishTimeout,
		l:        l,
	}, nil
}

// PublishAuthEvent publishes event within the publisher timeout. The caller's
// context only contributes log fields and the request id.
func (p *AuditPublisher) PublishAuthEvent(ctx context.Context, event models.AuthEvent) (err error) {
	ctx = wrap.WithAction(ctx, "publish_auth_event")
	defer func() {
		metrics.RecordAuditPublish(event.Type.String(), err)
	}()

	body, err := json.Marshal(event)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("marshal: %w", err))
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Body:          body,
		Timestamp:     event.OccurredAt,
		Type:          event.Type.String(),
		CorrelationId: event.RequestID,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = retry(pubCtx, publishAttempts, publishBackoff, func() error {
		if err := p.client.EnsureConnection(pubCtx); err != nil {
			return err
		}
		return p.client.Publish(pubCtx, p.exchange, event.Type.String(), pub)
	})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("publish %s: %w", event.Type, err))
	}

	p.l.Debug(ctx, "auth event published", "event", event.Type.String())
	return nil
}
