package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
)

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
)

// PaymentWebhook ingests provider notifications. Providers resend on missing
// acknowledgment, so processing is an idempotent, monotonic status advance:
// the guarded WAITING_FOR_PAYMENT -> PENDING update makes replays no-ops.
type PaymentWebhook struct {
	orders   OrderRepo
	idem     IdempotencyStore
	notifier Notifier
	events   EventPublisher
	cache    OrderCache
}

func NewPaymentWebhook(
	orders OrderRepo,
	idem IdempotencyStore,
	notifier Notifier,
	events EventPublisher,
	cache OrderCache,
) *PaymentWebhook {
	return &PaymentWebhook{
		orders:   orders,
		idem:     idem,
		notifier: notifier,
		events:   events,
		cache:    cache,
	}
}

// Handle returns an error for logging only; the HTTP layer acknowledges the
// provider regardless of the outcome.
func (uc *PaymentWebhook) Handle(ctx context.Context, ev WebhookEvent) error {
	log := logging.FromCtx(ctx).With("event", ev.Event, "payment_id", ev.Object.ID)

	if ev.Object.ID == "" {
		return errors.New("webhook event without payment id")
	}

	// Cheap replay filter; correctness does not depend on it.
	fresh, err := uc.idem.TryLock(ctx, "payment-event", ev.Object.ID+":"+ev.Event)
	if err != nil {
		log.Warn("webhook dedup store unavailable, processing anyway", "error", err)
	} else if !fresh {
		log.Info("duplicate provider notification dropped")
		return nil
	}

	switch ev.Event {
	case EventPaymentSucceeded:
		return uc.paymentSucceeded(ctx, ev)
	case EventPaymentCanceled:
		return uc.paymentCanceled(ctx, ev)
	default:
		log.Info("ignoring unhandled provider event")
		return nil
	}
}

func (uc *PaymentWebhook) paymentSucceeded(ctx context.Context, ev WebhookEvent) error {
	order, err := uc.orders.GetByPaymentID(ctx, ev.Object.ID)
	if err != nil {
		return fmt.Errorf("order for payment %s: %w", ev.Object.ID, err)
	}

	// The paid flag rides the guarded claim so a concurrent transition can
	// never be overwritten by this handler.
	paid := true
	patch := domain.StatusPatch{Paid: &paid}
	advanced, err := uc.orders.UpdateStatusIf(ctx, order.Number,
		domain.StatusWaitingForPayment, domain.StatusPending, patch)
	if err != nil {
		return fmt.Errorf("advance order %s: %w", order.Number, err)
	}
	if !advanced {
		// Already past WAITING_FOR_PAYMENT: replayed notification, no-op.
		return nil
	}

	order.Status = domain.StatusPending
	order.UpdatedAt = time.Now().UTC()
	patch.Apply(order)

	uc.notifier.OrderStatusChanged(ctx, order)
	uc.sideEffects(ctx, order)
	return nil
}

func (uc *PaymentWebhook) paymentCanceled(ctx context.Context, ev WebhookEvent) error {
	order, err := uc.orders.GetByPaymentID(ctx, ev.Object.ID)
	if err != nil {
		return fmt.Errorf("order for payment %s: %w", ev.Object.ID, err)
	}

	now := time.Now().UTC()
	reason := "Платёж отменён платёжной системой"
	patch := domain.StatusPatch{CancelledAt: &now, CancellationReason: &reason}
	advanced, err := uc.orders.UpdateStatusIf(ctx, order.Number,
		domain.StatusWaitingForPayment, domain.StatusCancelled, patch)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", order.Number, err)
	}
	if !advanced {
		return nil
	}

	order.Status = domain.StatusCancelled
	order.UpdatedAt = now
	patch.Apply(order)

	uc.notifier.OrderStatusChanged(ctx, order)
	uc.sideEffects(ctx, order)
	return nil
}

func (uc *PaymentWebhook) sideEffects(ctx context.Context, order *domain.Order) {
	log := logging.FromCtx(ctx)
	if err := uc.cache.SetStatus(ctx, order.Number, string(order.Status)); err != nil {
		log.Warn("order status cache write failed", "order_number", order.Number, "error", err)
	}
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		OrderNumber:  order.Number,
		UserID:       order.UserID,
		Status:       string(order.Status),
		NetAmountKop: order.Totals.NetKop,
		OccurredAt:   time.Now().UTC(),
	}); err != nil {
		log.Warn("order event publish failed", "order_number", order.Number, "error", err)
	}
}
