package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one notification task off the queue. A nil return acks
// the delivery; an error nacks it and the Router decides whether it comes
// back. The broker may redeliver a task that was acked late, so handlers
// must tolerate seeing the same task twice.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
