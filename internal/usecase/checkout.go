package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
)

type CheckoutInput struct {
	UserID        string
	DeliveryType  domain.DeliveryType
	PaymentMethod domain.PaymentMethod
	Delivery      domain.DeliveryInfo
	ReturnURL     string
	// IdempotencyKey is the client-supplied replay token. A repeated checkout
	// with the same key returns the already-created order instead of charging
	// the user twice.
	IdempotencyKey string
}

type CheckoutOutput struct {
	Order           *domain.Order
	ConfirmationURL string
}

// Checkout coordinates cart validation, inventory adjustment, gateway
// interaction and notification for a single order creation.
type Checkout struct {
	orders   OrderRepo
	carts    CartRepo
	catalog  Catalog
	numbers  OrderNumbers
	gateway  PaymentGateway
	notifier Notifier
	events   EventPublisher
	cache    OrderCache
	idem     IdempotencyStore

	gatewayTimeout time.Duration
	currency       string
}

func NewCheckout(
	orders OrderRepo,
	carts CartRepo,
	catalog Catalog,
	numbers OrderNumbers,
	gateway PaymentGateway,
	notifier Notifier,
	events EventPublisher,
	cache OrderCache,
	idem IdempotencyStore,
	gatewayTimeout time.Duration,
) *Checkout {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 10 * time.Second
	}
	return &Checkout{
		orders:         orders,
		carts:          carts,
		catalog:        catalog,
		numbers:        numbers,
		gateway:        gateway,
		notifier:       notifier,
		events:         events,
		cache:          cache,
		idem:           idem,
		gatewayTimeout: gatewayTimeout,
		currency:       "RUB",
	}
}

// Execute runs the checkout algorithm. Failures before the order is persisted
// are pure (no side effect has happened). Failures after that point are
// downgraded to loud logging: the order exists and the caller gets it back.
func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	log := logging.FromCtx(ctx).With("user_id", in.UserID)

	// 0. Replay filter: a retried request with the same key gets the order
	// that was already created, without re-charging or re-reading the cart.
	if in.IdempotencyKey != "" {
		number, found, err := uc.idem.Recall(ctx, "checkout", in.UserID+":"+in.IdempotencyKey)
		if err != nil {
			log.Warn("checkout idempotency store unavailable, proceeding", "error", err)
		} else if found {
			order, err := uc.orders.GetByNumber(ctx, number)
			if err != nil {
				return CheckoutOutput{}, fmt.Errorf("replayed order %s: %w", number, err)
			}
			return CheckoutOutput{Order: order}, nil
		}
	}

	// 1. Validate the delivery payload before touching anything.
	if !in.DeliveryType.Valid() {
		return CheckoutOutput{}, &domain.ValidationError{Field: "deliveryType", Reason: "unknown delivery type"}
	}
	if !in.PaymentMethod.Valid() {
		return CheckoutOutput{}, &domain.ValidationError{Field: "paymentMethod", Reason: "unknown payment method"}
	}
	if err := in.Delivery.Validate(in.DeliveryType); err != nil {
		return CheckoutOutput{}, err
	}

	// 2. Load the cart; empty carts never reach inventory or the gateway.
	cart, err := uc.carts.Get(ctx, in.UserID)
	if err != nil {
		return CheckoutOutput{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		return CheckoutOutput{}, domain.ErrEmptyCart
	}

	// 3-4. Pre-flight stock check and live-price materialization. The check is
	// optimistic; the conditional decrement below is what prevents overselling.
	lines := make([]domain.PricedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		v, err := uc.catalog.ResolveVariant(ctx, item.ProductID, item.Article)
		if err != nil {
			return CheckoutOutput{}, fmt.Errorf("resolve variant %s: %w", item.Article, err)
		}
		ok, err := uc.catalog.CheckAvailability(ctx, item.ProductID, item.Article, item.Quantity)
		if err != nil {
			return CheckoutOutput{}, fmt.Errorf("check availability %s: %w", item.Article, err)
		}
		if !ok {
			return CheckoutOutput{}, &domain.InsufficientStockError{
				Article:   item.Article,
				Requested: item.Quantity,
				Available: v.Stock,
			}
		}
		lines = append(lines, domain.PricedLine{
			ProductID:   item.ProductID,
			Title:       v.ProductTitle,
			Article:     item.Article,
			Quantity:    item.Quantity,
			PriceKop:    v.PriceKop,
			DiscountPct: v.DiscountPct,
		})
	}

	// 5-6. Build the unsaved order.
	number, err := uc.numbers.Next(ctx)
	if err != nil {
		return CheckoutOutput{}, fmt.Errorf("next order number: %w", err)
	}
	now := time.Now().UTC()
	order := &domain.Order{
		Number:        number,
		UserID:        in.UserID,
		Items:         domain.SnapshotItems(lines),
		Totals:        domain.TotalsOf(lines),
		Status:        in.PaymentMethod.InitialStatus(),
		DeliveryType:  in.DeliveryType,
		Delivery:      in.Delivery,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 7. Create the gateway payment first: no order record may exist without a
	// definitive payment-creation outcome.
	var confirmationURL string
	if in.PaymentMethod.RequiresOnlinePayment() {
		gctx, cancel := context.WithTimeout(ctx, uc.gatewayTimeout)
		p, err := uc.gateway.CreatePayment(gctx, CreatePaymentInput{
			AmountKop:   order.Totals.NetKop,
			Currency:    uc.currency,
			Description: "Заказ " + order.Number,
			OrderNumber: order.Number,
			Method:      in.PaymentMethod.GatewayMethod(),
			ReturnURL:   in.ReturnURL,
		})
		cancel()
		if err != nil {
			return CheckoutOutput{}, err
		}
		order.PaymentID = p.ID
		confirmationURL = p.ConfirmationURL
	}

	// 8. Persist. From here on failures no longer fail the checkout.
	if err := uc.orders.Create(ctx, order); err != nil {
		return CheckoutOutput{}, fmt.Errorf("create order: %w", err)
	}
	log = log.With("order_number", order.Number)

	if in.IdempotencyKey != "" {
		if err := uc.idem.Remember(ctx, "checkout", in.UserID+":"+in.IdempotencyKey, order.Number); err != nil {
			log.Warn("checkout idempotency record failed", "error", err)
		}
	}

	// 9. Tell the administrators; best-effort by the Notifier contract.
	uc.notifier.OrderCreated(ctx, order)

	// 10. Adjust inventory. Order exists but stock is not yet deducted; any
	// failure here is a reconciliation concern, not a checkout failure.
	for _, item := range order.Items {
		if err := uc.catalog.DecrementStock(ctx, item.ProductID, item.Article, item.Quantity); err != nil {
			log.Error("RECONCILE: stock decrement failed after order creation",
				"article", item.Article, "quantity", item.Quantity, "error", err)
			continue
		}
		if err := uc.catalog.IncrementPurchased(ctx, item.ProductID, item.Article, item.Quantity); err != nil {
			log.Error("RECONCILE: purchase counter increment failed",
				"article", item.Article, "quantity", item.Quantity, "error", err)
		}
	}

	// 11. Clear the cart only after inventory moved.
	if err := uc.carts.Clear(ctx, in.UserID); err != nil {
		log.Error("RECONCILE: cart clear failed after order creation", "error", err)
	}

	// 12. Cache and event stream, both best-effort.
	uc.bestEffortSideEffects(ctx, order, log)

	return CheckoutOutput{Order: order, ConfirmationURL: confirmationURL}, nil
}

func (uc *Checkout) bestEffortSideEffects(ctx context.Context, o *domain.Order, log *slog.Logger) {
	if err := uc.cache.SetStatus(ctx, o.Number, string(o.Status)); err != nil {
		log.Warn("order status cache write failed", "error", err)
	}
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		OrderNumber:  o.Number,
		UserID:       o.UserID,
		Status:       string(o.Status),
		NetAmountKop: o.Totals.NetKop,
		OccurredAt:   time.Now().UTC(),
	}); err != nil {
		log.Warn("order event publish failed", "error", err)
	}
}
