package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/Temutjin2k/auth-service/pkg/logger"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
)

var ErrClosed = errors.New("rabbitmq connection is closed")

const heartbeat = 10 * time.Second

type RabbitMQ struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	closeChan chan *amqp.Error
	isClosed  bool
	stopped   bool
	mu        sync.Mutex
	dsn       string

	log logger.Logger
}

// New creates rabbitMQ client
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}

	r := &RabbitMQ{
		Conn:      conn,
		Channel:   ch,
		closeChan: notifyClose(conn, ch),
		dsn:       dsn,
		log:       log,
	}

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")

	go r.monitorConnection(r.closeChan)

	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{
		Heartbeat: heartbeat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return conn, ch, nil
}

// notifyClose merges connection and channel close notifications into one channel.
func notifyClose(conn *amqp.Connection, ch *amqp.Channel) chan *amqp.Error {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	merged := make(chan *amqp.Error, 1)
	go func() {
		select {
		case err := <-connClose:
			merged <- err
		case err := <-chClose:
			merged <- err
		}
	}()
	return merged
}

// monitorConnection marks the client closed once the broker drops it.
func (r *RabbitMQ) monitorConnection(closeChan chan *amqp.Error) {
	closeErr := <-closeChan

	r.mu.Lock()
	r.isClosed = true
	r.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)
	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closedLocked()
}

func (r *RabbitMQ) closedLocked() bool {
	return r.isClosed || r.Conn == nil || r.Conn.IsClosed() || r.Channel == nil || r.Channel.IsClosed()
}

// DeclareExchange declares a durable exchange of the given kind.
func (r *RabbitMQ) DeclareExchange(name, kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return ErrClosed
	}
	if err := r.Channel.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", name, err)
	}
	return nil
}

// Publish sends msg to exchange with routing key. It does not reconnect.
func (r *RabbitMQ) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closedLocked() {
		return ErrClosed
	}
	return r.Channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

// Close closes rabbit connection
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	r.mu.Lock()
	if r.Conn == nil {
		r.mu.Unlock()
		return nil
	}
	r.isClosed = true
	r.stopped = true
	ch, conn := r.Channel, r.Conn
	r.Channel, r.Conn = nil, nil
	r.mu.Unlock()

	r.log.Debug(ctx, "closing channel")
	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil && ctx.Err() == nil && !errors.Is(err, amqp.ErrClosed) {
			r.log.Error(ctx, "error closing channel", err)
		}
	}

	r.log.Debug(ctx, "closing RabbitMQ connection")
	if err := closeWithCtxFunc(ctx, conn.Close); err != nil && !errors.Is(err, amqp.ErrClosed) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to close connection: %w", err)
	}

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "rabbitMQ closed")
	return nil
}

// helper to close a resource with context cancellation safely
func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect dials again with linear backoff. It is a no-op while the
// current connection is healthy.
func (r *RabbitMQ) Reconnect(ctx context.Context, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrClosed
	}
	if r.dsn == "" {
		return errors.New("dsn is empty: can't reconnect")
	}
	if !r.closedLocked() {
		return nil
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range attempts {
		conn, ch, err = dial(r.dsn)
		if err == nil {
			break
		}

		wait := time.Duration(i+1) * 500 * time.Millisecond
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}

	r.Conn = conn
	r.Channel = ch
	r.closeChan = notifyClose(conn, ch)
	r.isClosed = false

	go r.monitorConnection(r.closeChan)

	r.log.Info(wrap.WithAction(ctx, types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")
	return nil
}

// EnsureConnection reconnects when the broker dropped the connection.
func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if !r.IsConnectionClosed() {
		return nil
	}

	r.log.Warn(ctx, "rabbit connection closed, reconnecting...")
	if err := r.Reconnect(ctx, 3); err != nil {
		return err
	}
	return nil
}
