package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"order-ledger/internal/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NewConnectionManager dials the broker once and keeps the connection open,
// redialing with backoff whenever the broker drops it.
func NewConnectionManager(ctx context.Context, config *Config) (*ConnectionManager, error) {
	ctx, cancel := context.WithCancel(ctx)

	cm := &ConnectionManager{
		url:           config.URL(),
		retryInterval: 2 * time.Second,
		ctx:           ctx,
		cancel:        cancel,
		dial:          amqp.Dial,
	}

	conn, err := cm.dial(cm.url)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to rabbitmq at %s: %w", config.Redacted(), err)
	}
	cm.attach(conn)

	return cm, nil
}

// attach installs conn and watches it. A conn arriving after Close is
// closed right away.
func (cm *ConnectionManager) attach(conn *amqp.Connection) {
	cm.mu.Lock()
	if cm.ctx.Err() != nil {
		cm.mu.Unlock()
		_ = conn.Close()
		return
	}
	cm.conn = conn
	cm.isConnected = true
	cm.mu.Unlock()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go cm.watch(closed)
}

func (cm *ConnectionManager) watch(closed <-chan *amqp.Error) {
	var err *amqp.Error
	select {
	case <-cm.ctx.Done():
		return
	case err = <-closed:
	}
	// nil means we closed it ourselves
	if err == nil {
		return
	}

	cm.mu.Lock()
	cm.isConnected = false
	cm.mu.Unlock()
	logger.Warning.Printf("rabbitmq connection lost: %v", err)

	cm.redial()
}

func (cm *ConnectionManager) redial() {
	backoff := &exponentialBackoff{min: cm.retryInterval, max: 30 * time.Second, factor: 2}
	for attempt := 1; ; attempt++ {
		backoff.sleep(cm.ctx)
		if cm.ctx.Err() != nil {
			return
		}

		conn, err := cm.dial(cm.url)
		if err != nil {
			logger.Warning.Printf("rabbitmq redial %d failed: %v", attempt, err)
			continue
		}
		logger.Info.Printf("rabbitmq connection restored after %d attempts", attempt)
		cm.attach(conn)
		return
	}
}

func (c *Config) endpoint() *url.URL {
	return &url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
}

// URL returns URI when set, otherwise an amqp URL with escaped credentials.
func (c *Config) URL() string {
	if c.URI != "" {
		return c.URI
	}
	return c.endpoint().String()
}

// Redacted is URL with the password masked, for logs.
func (c *Config) Redacted() string {
	if c.URI == "" {
		return c.endpoint().Redacted()
	}
	u, err := url.Parse(c.URI)
	if err != nil {
		return "rabbitmq"
	}
	return u.Redacted()
}

func (cm *ConnectionManager) GetConnection() *amqp.Connection {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.ctx.Err() != nil {
		return nil
	}
	return cm.conn
}

func (cm *ConnectionManager) Close() error {
	cm.cancel()

	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.isConnected = false
	if cm.conn == nil {
		return nil
	}
	err := cm.conn.Close()
	cm.conn = nil
	if err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}
	return nil
}

func (cm *ConnectionManager) IsClosed() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.ctx.Err() != nil || !cm.isConnected
}
