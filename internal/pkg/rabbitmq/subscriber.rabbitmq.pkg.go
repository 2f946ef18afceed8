package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"order-ledger/internal/pkg/logger"

	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. A returned error sends the message
// to the dead-letter queue; it is not redelivered.
type MessageHandler func(ctx context.Context, msg *amqp.Delivery) error

type SubscribeOptions struct {
	QueueOpts      *QueueConfig
	QueueName      string
	ConsumerName   string
	WorkerCount    int
	PrefetchCount  int
	DeadLetterName string
	HandlerTimeout time.Duration
}

func DefaultSubscribeOptions(queueName string) *SubscribeOptions {
	return &SubscribeOptions{
		QueueName:      queueName,
		ConsumerName:   queueName,
		WorkerCount:    3,
		PrefetchCount:  10,
		DeadLetterName: "fail:" + queueName,
		HandlerTimeout: 5 * time.Minute,
	}
}

type Subscriber struct {
	channelManagers []*ChannelManager
	handler         MessageHandler
	opts            *SubscribeOptions
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	isRunning       atomic.Bool
	pool            *ants.Pool
}

func NewSubscriber(ctx context.Context, connManager *ConnectionManager, handler MessageHandler, opts *SubscribeOptions) (*Subscriber, error) {
	ctx, cancel := context.WithCancel(ctx)

	pool, err := ants.NewPool(opts.WorkerCount, ants.WithOptions(ants.Options{
		ExpiryDuration: time.Hour,
		PreAlloc:       true,
		Nonblocking:    true,
		PanicHandler: func(i interface{}) {
			logger.Error.Printf("Worker panic: %v", i)
		},
	}))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create %s worker pool: %w", opts.QueueName, err)
	}

	sub := &Subscriber{
		handler:         handler,
		opts:            opts,
		ctx:             ctx,
		cancel:          cancel,
		channelManagers: make([]*ChannelManager, opts.WorkerCount),
		pool:            pool,
	}
	for i := range sub.channelManagers {
		sub.channelManagers[i] = NewChannelManager(ctx, connManager)
	}

	return sub, nil
}

func (s *Subscriber) Start() error {
	if s.isRunning.Swap(true) {
		return fmt.Errorf("subscriber is already running")
	}
	for i := 0; i < s.opts.WorkerCount; i++ {
		workerID := i
		s.wg.Add(1)
		if err := s.pool.Submit(func() { s.runWorker(workerID) }); err != nil {
			s.wg.Done()
			return fmt.Errorf("failed to start worker %d: %w", workerID, err)
		}
	}
	return nil
}

func (s *Subscriber) runWorker(workerID int) {
	defer s.wg.Done()

	backoff := &exponentialBackoff{min: time.Second, max: 30 * time.Second, factor: 2}
	for s.isRunning.Load() && s.ctx.Err() == nil {
		if err := s.consume(workerID); err != nil {
			logger.Warning.Printf("Worker %d on %s consume error: %v", workerID, s.opts.QueueName, err)
			backoff.sleep(s.ctx)
			continue
		}
		backoff.reset()
	}
}

type exponentialBackoff struct {
	min    time.Duration
	max    time.Duration
	factor float64
	curr   time.Duration
}

func (b *exponentialBackoff) next() time.Duration {
	if b.curr == 0 {
		b.curr = b.min
	} else {
		b.curr = time.Duration(float64(b.curr) * b.factor)
		if b.curr > b.max {
			b.curr = b.max
		}
	}
	return b.curr
}

func (b *exponentialBackoff) sleep(ctx context.Context) {
	t := time.NewTimer(b.next())
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (b *exponentialBackoff) reset() {
	b.curr = 0
}

func (s *Subscriber) consume(workerID int) error {
	ch, err := s.channelManagers[workerID].GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}
	if err := ch.Qos(s.opts.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	q, err := declareQueue(ch, s.opts.QueueName, s.opts.QueueOpts)
	if err != nil {
		return err
	}

	consumerName := fmt.Sprintf("%s-%d-%d", s.opts.ConsumerName, workerID, time.Now().Unix())
	msgs, err := ch.ConsumeWithContext(s.ctx, q.Name, consumerName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming on worker %d: %w", workerID, err)
	}

	for msg := range msgs {
		if err := s.processMessage(workerID, &msg); err != nil {
			logger.Error.Printf("Worker %d failed to settle message %s: %v", workerID, msg.MessageId, err)
		}
	}
	return nil
}

func (s *Subscriber) processMessage(workerID int, msg *amqp.Delivery) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.opts.HandlerTimeout)
	defer cancel()

	if err := s.handler(ctx, msg); err != nil {
		logger.Warning.Printf("Worker %d handler error on %s: %v", workerID, s.opts.QueueName, err)
		if dlErr := s.publishToDeadLetter(workerID, msg, err); dlErr != nil {
			// keep the message on the broker rather than lose it
			return msg.Nack(false, true)
		}
	}
	return msg.Ack(false)
}

func (s *Subscriber) publishToDeadLetter(workerID int, msg *amqp.Delivery, cause error) error {
	ch, err := s.channelManagers[workerID].GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel for dead letter: %w", err)
	}
	if _, err := declareQueue(ch, s.opts.DeadLetterName, nil); err != nil {
		return err
	}

	if err := ch.PublishWithContext(s.ctx, "", s.opts.DeadLetterName, false, false,
		deadLetterPublishing(msg, s.opts.QueueName, cause, time.Now())); err != nil {
		return fmt.Errorf("failed to publish to dead letter queue: %w", err)
	}

	logger.Info.Printf("Moved message %s from %s to %s", msg.MessageId, s.opts.QueueName, s.opts.DeadLetterName)
	return nil
}

func deadLetterPublishing(msg *amqp.Delivery, queue string, cause error, at time.Time) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-death-reason"] = cause.Error()
	headers["x-death-time"] = at.Format(time.RFC3339)
	headers["x-death-queue"] = queue

	return amqp.Publishing{
		Headers:         headers,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		DeliveryMode:    amqp.Persistent,
		MessageId:       msg.MessageId,
		Timestamp:       msg.Timestamp,
		Type:            msg.Type,
		Body:            msg.Body,
	}
}

func (s *Subscriber) Stop() error {
	if !s.isRunning.Swap(false) {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Minute):
		return fmt.Errorf("timeout waiting for workers to stop")
	}

	for i, ch := range s.channelManagers {
		if err := ch.Close(); err != nil {
			logger.Error.Printf("Error closing channel for worker %d: %v", i, err)
		}
	}

	s.pool.Release()
	return nil
}

func (s *Subscriber) IsHealthy() bool {
	return s.isRunning.Load() && s.pool.Running() > 0
}
