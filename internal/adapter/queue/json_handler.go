package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONHandler decodes a delivery body into the task type T before handing it
// to HandleFunc. Notification tasks are published as JSON, so a body that
// does not decode is a producer bug and the resulting nack carries the
// routing key for triage.
type JSONHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) error
}

func (h JSONHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	var task T
	if err := json.Unmarshal(d.Body, &task); err != nil {
		return fmt.Errorf("decode %s task: %w", d.RoutingKey, err)
	}
	return h.HandleFunc(ctx, task)
}
