package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelManager hands out one AMQP channel, reopening it after the
// channel or its connection has closed.
type ChannelManager struct {
	cm  *ConnectionManager
	ctx context.Context
	mu  sync.Mutex
	ch  *amqp.Channel
}

func NewChannelManager(ctx context.Context, cm *ConnectionManager) *ChannelManager {
	return &ChannelManager{cm: cm, ctx: ctx}
}

func (c *ChannelManager) GetChannel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	if c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}

	conn := c.cm.GetConnection()
	if conn == nil || conn.IsClosed() {
		return nil, fmt.Errorf("rabbitmq connection is not available")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	c.ch = ch
	return ch, nil
}

func (c *ChannelManager) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil || c.ch.IsClosed() {
		c.ch = nil
		return nil
	}
	err := c.ch.Close()
	c.ch = nil
	return err
}

func declareQueue(ch *amqp.Channel, name string, config *QueueConfig) (amqp.Queue, error) {
	if config == nil {
		config = DefaultQueueConfig()
	}
	q, err := ch.QueueDeclare(name, config.Durable, config.AutoDelete, config.Exclusive, config.NoWait, config.Args)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}
