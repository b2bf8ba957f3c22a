package queue

import (
	"context"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
)

// EmailSink and TelegramSink are the slow delivery channels behind the queue.
type EmailSink interface {
	Send(to, subject, body string) error
}

type TelegramSink interface {
	Send(chatID int64, text string) error
}

// NotificationTaskHandler executes queued notification tasks. Intended to be
// used with the JSON adapter (queue.JSONHandler[usecase.NotificationTask]).
type NotificationTaskHandler struct {
	email    EmailSink
	telegram TelegramSink
}

func NewNotificationTaskHandler(email EmailSink, telegram TelegramSink) *NotificationTaskHandler {
	return &NotificationTaskHandler{email: email, telegram: telegram}
}

func (h *NotificationTaskHandler) HandleTask(ctx context.Context, task usecase.NotificationTask) error {
	log := logging.New("notify-worker").With(
		"channel", task.Channel, "event", task.Event, "order_number", task.OrderNumber)

	switch task.Channel {
	case "email":
		if h.email == nil {
			log.Warn("email sink not configured, dropping task")
			return nil
		}
		if err := h.email.Send(task.Recipient, task.Subject, task.Body); err != nil {
			log.Error("email delivery failed", "recipient", task.Recipient, "error", err)
			return err
		}
	case "telegram":
		if h.telegram == nil {
			log.Warn("telegram sink not configured, dropping task")
			return nil
		}
		if err := h.telegram.Send(task.TelegramChatID, task.Body); err != nil {
			log.Error("telegram delivery failed", "chat_id", task.TelegramChatID, "error", err)
			return err
		}
	default:
		// Unknown channel is poison; ack it away instead of requeueing forever.
		log.Warn("unknown notification channel, dropping task")
	}
	return nil
}
