package queue

import (
	"context"
	"testing"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandlerDecodesTask(t *testing.T) {
	var got usecase.NotificationTask
	h := JSONHandler[usecase.NotificationTask]{
		HandleFunc: func(_ context.Context, task usecase.NotificationTask) error {
			got = task
			return nil
		},
	}

	err := h.Handle(context.Background(), amqp.Delivery{
		RoutingKey: TaskQueueName,
		Body:       []byte(`{"channel":"email","recipient":"user@example.com","subject":"s"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "email", got.Channel)
	assert.Equal(t, "user@example.com", got.Recipient)
}

func TestJSONHandlerRejectsMalformedBody(t *testing.T) {
	called := false
	h := JSONHandler[usecase.NotificationTask]{
		HandleFunc: func(context.Context, usecase.NotificationTask) error {
			called = true
			return nil
		},
	}

	err := h.Handle(context.Background(), amqp.Delivery{
		RoutingKey: TaskQueueName,
		Body:       []byte(`{not json`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TaskQueueName)
	assert.False(t, called)
}
