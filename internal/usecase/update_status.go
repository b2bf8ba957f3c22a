package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/google/uuid"
)

type UpdateStatusInput struct {
	Number             string
	To                 domain.Status
	CancellationReason string
	DeliveryDate       *time.Time
	TrackingNumber     string
}

// UpdateStatus is the single authoritative transition function. The admin
// endpoint and the payment webhook both feed it; nothing else writes
// Order.Status.
type UpdateStatus struct {
	orders   OrderRepo
	gateway  PaymentGateway
	notifier Notifier
	events   EventPublisher
	cache    OrderCache

	gatewayTimeout time.Duration
}

func NewUpdateStatus(
	orders OrderRepo,
	gateway PaymentGateway,
	notifier Notifier,
	events EventPublisher,
	cache OrderCache,
	gatewayTimeout time.Duration,
) *UpdateStatus {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 10 * time.Second
	}
	return &UpdateStatus{
		orders:         orders,
		gateway:        gateway,
		notifier:       notifier,
		events:         events,
		cache:          cache,
		gatewayTimeout: gatewayTimeout,
	}
}

func (uc *UpdateStatus) Execute(ctx context.Context, in UpdateStatusInput) (*domain.Order, error) {
	log := logging.FromCtx(ctx).With("order_number", in.Number, "to_status", string(in.To))

	if !in.To.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := uc.orders.GetByNumber(ctx, in.Number)
	if err != nil {
		return nil, err
	}

	// Re-sending the current status is a no-op, not an error. This keeps
	// repeated cancellations harmless and preserves a once-set reason.
	if order.Status == in.To {
		return order, nil
	}

	if !order.Status.CanTransitionTo(in.To) {
		if order.Status.Terminal() {
			return nil, fmt.Errorf("%w: %s", domain.ErrTerminalStatus, order.Status)
		}
		return nil, &domain.InvalidTransitionError{From: order.Status, To: in.To}
	}

	// Claim the transition with a guarded update so two concurrent actors
	// cannot both win (and, say, double-refund). The patch rides the same
	// write: a losing actor leaves no trace on the document.
	now := time.Now().UTC()
	patch := buildTransitionPatch(order, in, now)

	claimed, err := uc.orders.UpdateStatusIf(ctx, order.Number, order.Status, in.To, patch)
	if err != nil {
		return nil, fmt.Errorf("claim transition: %w", err)
	}
	if !claimed {
		// Someone else moved the order first; reload and report accordingly.
		current, err := uc.orders.GetByNumber(ctx, in.Number)
		if err != nil {
			return nil, err
		}
		if current.Status == in.To {
			return current, nil
		}
		return nil, &domain.InvalidTransitionError{From: current.Status, To: in.To}
	}

	order.Status = in.To
	order.UpdatedAt = now
	patch.Apply(order)

	// Settle the gateway side after the transition is claimed: the guard
	// above guarantees exactly one winner talks to the provider.
	if in.To == domain.StatusCancelled && order.PaymentID != "" {
		if refundErr := uc.settleCancelledPayment(ctx, order, log); refundErr != nil {
			return order, refundErr
		}
	}

	uc.notifier.OrderStatusChanged(ctx, order)

	if err := uc.cache.SetStatus(ctx, order.Number, string(order.Status)); err != nil {
		log.Warn("order status cache write failed", "error", err)
	}
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		OrderNumber:  order.Number,
		UserID:       order.UserID,
		Status:       string(order.Status),
		NetAmountKop: order.Totals.NetKop,
		OccurredAt:   now,
	}); err != nil {
		log.Warn("order event publish failed", "error", err)
	}

	return order, nil
}

// settleCancelledPayment returns the money for a captured payment and voids
// an uncaptured one. Only captured money is refunded; a refund request for a
// never-paid intent would be rejected by the provider.
func (uc *UpdateStatus) settleCancelledPayment(ctx context.Context, order *domain.Order, log *slog.Logger) error {
	gctx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
	defer cancel()

	if order.Paid {
		if _, err := uc.gateway.RefundPayment(gctx, order.PaymentID, order.Totals.NetKop, "RUB"); err != nil {
			// The cancellation stands; the refund is financially significant,
			// so the failure is surfaced for the operator to retry.
			log.Error("refund failed for cancelled order", "payment_id", order.PaymentID, "error", err)
			return fmt.Errorf("refund payment %s: %w", order.PaymentID, err)
		}
		return nil
	}

	// Nothing was captured; voiding the pending intent is housekeeping and
	// its failure is not worth alarming the admin over.
	if _, err := uc.gateway.CancelPayment(gctx, order.PaymentID); err != nil {
		log.Warn("void of pending payment failed for cancelled order",
			"payment_id", order.PaymentID, "error", err)
	}
	return nil
}

// buildTransitionPatch computes the per-state side fields written together
// with the status claim.
func buildTransitionPatch(order *domain.Order, in UpdateStatusInput, now time.Time) domain.StatusPatch {
	var p domain.StatusPatch
	switch in.To {
	case domain.StatusConfirmed:
		// A delivery date supplied earlier survives unless resupplied now.
		if in.DeliveryDate != nil {
			p.DeliveryDate = in.DeliveryDate
		}
	case domain.StatusShipped:
		if in.TrackingNumber != "" {
			p.TrackingNumber = &in.TrackingNumber
		} else if order.TrackingNumber == "" {
			tn := generateTrackingNumber()
			p.TrackingNumber = &tn
		}
	case domain.StatusDelivered:
		p.DeliveredAt = &now
		if !order.Paid {
			// Covers pay-on-delivery and pay-in-shop completions.
			paid := true
			p.Paid = &paid
		}
	case domain.StatusCancelled:
		p.CancelledAt = &now
		if reason := strings.TrimSpace(in.CancellationReason); reason != "" {
			p.CancellationReason = &reason
		} else if order.CancellationReason == "" {
			r := domain.DefaultCancellationReason
			p.CancellationReason = &r
		}
	}
	return p
}

func generateTrackingNumber() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
