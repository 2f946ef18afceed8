package serverApp

import (
	"context"
	"fmt"

	"order-ledger/internal/common/errs"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/pkg/validation"
	ledgerService "order-ledger/internal/service/ledger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderSubmitQueue carries orders from chat intake.
const OrderSubmitQueue = "ledger.order.submit"

// InitWorker starts the order queue consumer. Stop the returned subscriber
// on shutdown.
func InitWorker(ctx context.Context, rb *rabbitmq.ConnectionManager, c *Container) (*rabbitmq.Subscriber, error) {
	opts := rabbitmq.DefaultSubscribeOptions(OrderSubmitQueue)
	if c.Env.RabbitWorkers > 0 {
		opts.WorkerCount = c.Env.RabbitWorkers
	}

	sub, err := rabbitmq.NewSubscriber(ctx, rb, OrderSubmitHandler(c.LedgerService), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s subscriber: %w", OrderSubmitQueue, err)
	}
	if err := sub.Start(); err != nil {
		return nil, err
	}
	logger.Info.Printf("Worker consuming %s with %d workers", OrderSubmitQueue, opts.WorkerCount)
	return sub, nil
}

// OrderSubmitHandler records one queued order. Payloads that cannot be
// decoded or validated fail immediately and are dead-lettered.
func OrderSubmitHandler(svc ledgerService.IService) rabbitmq.MessageHandler {
	return func(ctx context.Context, msg *amqp.Delivery) error {
		req, err := helper.StringToStruct[ledgerService.SubmitOrderRequest](string(msg.Body))
		if err != nil {
			return errs.Validation("message %s: %v", msg.MessageId, err)
		}
		if req == nil {
			return errs.Validation("message %s: empty order", msg.MessageId)
		}
		if err := validation.Validate(req); err != nil {
			return err
		}

		res, err := svc.Submit(ctx, req)
		if err != nil {
			return err
		}
		logger.Info.Printf("order for %q recorded in %s rows %d-%d", res.Block.CustomerName, res.Sheet, res.Block.StartRow, res.Block.EndRow)
		return nil
	}
}
