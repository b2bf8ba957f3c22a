package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
)

// OrderEventsProducer streams order lifecycle events for downstream
// consumers (analytics, back-office). Callers treat publishing as
// best-effort; errors are theirs to log.
type OrderEventsProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewOrderEventsProducer(producer sarama.SyncProducer, topic string) *OrderEventsProducer {
	return &OrderEventsProducer{producer: producer, topic: topic}
}

func (p *OrderEventsProducer) PublishOrderEvent(_ context.Context, ev usecase.OrderEventMsg) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.OrderNumber),
		Value: sarama.ByteEncoder(body),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish order event %s: %w", ev.OrderNumber, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*OrderEventsProducer)(nil)
