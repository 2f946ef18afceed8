package rabbitmq

import (
	"context"
	"fmt"
	"sync"
)

type IPublisher interface {
	Publish(ctx context.Context, queue string, msg *Message) error
	PublishEvent(ctx context.Context, queue, eventType string, data interface{}) error
}

// Publisher sends persistent messages to queues through the default exchange.
type Publisher struct {
	channel  *ChannelManager
	mu       sync.Mutex
	declared map[string]bool
}

func NewPublisher(ctx context.Context, cm *ConnectionManager) (*Publisher, error) {
	if cm == nil {
		return nil, fmt.Errorf("rabbitmq connection manager is nil")
	}
	return &Publisher{
		channel:  NewChannelManager(ctx, cm),
		declared: map[string]bool{},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, queue string, msg *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel.GetChannel()
	if err != nil {
		return err
	}

	if !p.declared[queue] {
		if _, err := declareQueue(ch, queue, nil); err != nil {
			return err
		}
		p.declared[queue] = true
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, *msg.GeneratePayload()); err != nil {
		// channel state is unknown after a failed publish
		p.declared = map[string]bool{}
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

func (p *Publisher) PublishEvent(ctx context.Context, queue, eventType string, data interface{}) error {
	msg, err := NewEventMessage(eventType, data)
	if err != nil {
		return err
	}
	return p.Publish(ctx, queue, msg)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}
