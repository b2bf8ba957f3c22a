package notify

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
)

// Realtime event names consumed by the frontend.
const (
	EventOrderUpdated        = "order-updated"         // to the owning user
	EventOrderUpdate         = "order-update"          // to the admin broadcast
	EventOrderDetailsUpdated = "order-details-updated" // to the order room
)

const RoleAdmin = "admin"

// TaskQueue hands a notification task to the background worker.
type TaskQueue interface {
	PublishTask(ctx context.Context, task usecase.NotificationTask) error
}

// Fanout dispatches one order event to the realtime hub and the slow channels
// (e-mail, Telegram) via the task queue. Every channel is independent and
// best-effort: a failure is logged and never reaches the caller, and it never
// prevents delivery on the other channels.
type Fanout struct {
	hub        *Hub
	tasks      TaskQueue
	users      usecase.UserDirectory
	adminEmail string
	log        *slog.Logger
}

func NewFanout(hub *Hub, tasks TaskQueue, users usecase.UserDirectory, adminEmail string) *Fanout {
	return &Fanout{
		hub:        hub,
		tasks:      tasks,
		users:      users,
		adminEmail: adminEmail,
		log:        logging.New("notify"),
	}
}

func (f *Fanout) OrderCreated(ctx context.Context, o *domain.Order) {
	payload := orderPayload(o)

	f.hub.ToRole(RoleAdmin, EventOrderUpdate, payload)

	if f.adminEmail != "" {
		f.enqueue(ctx, o, usecase.NotificationTask{
			Channel:     "email",
			Recipient:   f.adminEmail,
			Event:       "order.created",
			OrderNumber: o.Number,
			Status:      string(o.Status),
			Subject:     fmt.Sprintf("Новый заказ %s", o.Number),
			Body:        fmt.Sprintf("Поступил новый заказ %s на сумму %.2f ₽.", o.Number, float64(o.Totals.NetKop)/100),
		})
	}

	// The user sees an immediate status push only when nothing is pending on
	// the gateway side; otherwise the confirmation URL is their next step.
	if o.Status != domain.StatusWaitingForPayment {
		f.hub.ToUser(o.UserID, EventOrderUpdated, payload)
	}
	f.userChannels(ctx, o, "order.created",
		fmt.Sprintf("Заказ %s оформлен", o.Number),
		fmt.Sprintf("Ваш заказ %s принят. Сумма: %.2f ₽.", o.Number, float64(o.Totals.NetKop)/100))
}

func (f *Fanout) OrderStatusChanged(ctx context.Context, o *domain.Order) {
	payload := orderPayload(o)

	f.hub.ToUser(o.UserID, EventOrderUpdated, payload)
	f.hub.ToRole(RoleAdmin, EventOrderUpdate, payload)
	f.hub.ToRoom("order:"+o.Number, EventOrderDetailsUpdated, payload)

	f.userChannels(ctx, o, "order.status_changed",
		fmt.Sprintf("Заказ %s: %s", o.Number, o.Status),
		fmt.Sprintf("Статус вашего заказа %s изменился: %s.", o.Number, o.Status))
}

// userChannels enqueues e-mail and Telegram tasks for the order owner.
func (f *Fanout) userChannels(ctx context.Context, o *domain.Order, event, subject, body string) {
	contact, err := f.users.Contact(ctx, o.UserID)
	if err != nil {
		f.log.Error("contact lookup failed",
			"user_id", o.UserID, "event", event, "order_number", o.Number, "error", err)
		return
	}

	if contact.Email != "" {
		f.enqueue(ctx, o, usecase.NotificationTask{
			Channel:     "email",
			Recipient:   contact.Email,
			Event:       event,
			OrderNumber: o.Number,
			Status:      string(o.Status),
			Subject:     subject,
			Body:        body,
		})
	}
	if contact.TelegramChatID != 0 {
		f.enqueue(ctx, o, usecase.NotificationTask{
			Channel:        "telegram",
			TelegramChatID: contact.TelegramChatID,
			Event:          event,
			OrderNumber:    o.Number,
			Status:         string(o.Status),
			Body:           body,
		})
	}
}

func (f *Fanout) enqueue(ctx context.Context, o *domain.Order, task usecase.NotificationTask) {
	if err := f.tasks.PublishTask(ctx, task); err != nil {
		f.log.Error("notification task enqueue failed",
			"channel", task.Channel, "recipient", task.Recipient,
			"event", task.Event, "order_number", o.Number, "error", err)
	}
}

func orderPayload(o *domain.Order) map[string]any {
	return map[string]any{
		"orderId": o.Number,
		"status":  o.Status,
		"paid":    o.Paid,
	}
}

var _ usecase.Notifier = (*Fanout)(nil)
