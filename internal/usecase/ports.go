package usecase

import (
	"context"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
)

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// UpdateStatusIf advances status only when the stored status still equals
	// fromStatus; returns false when nothing matched. The patch is applied in
	// the same write, so transition-owned fields land atomically with the
	// claim and a losing actor writes nothing at all.
	UpdateStatusIf(ctx context.Context, number string, fromStatus, toStatus domain.Status, patch domain.StatusPatch) (bool, error)
}

type CartRepo interface {
	// Get returns an empty cart when the user has none yet.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	// Clear empties the cart document but keeps it (carts are cleared, not deleted).
	Clear(ctx context.Context, userID string) error
}

type Catalog interface {
	ResolveVariant(ctx context.Context, productID, article string) (*domain.Variant, error)
	// CheckAvailability is a read-only pre-flight; the correctness guarantee
	// against overselling is the conditional DecrementStock.
	CheckAvailability(ctx context.Context, productID, article string, quantity int64) (bool, error)
	// DecrementStock is atomic and conditional: it fails with
	// *domain.InsufficientStockError instead of letting stock go negative.
	DecrementStock(ctx context.Context, productID, article string, quantity int64) error
	IncrementPurchased(ctx context.Context, productID, article string, quantity int64) error
}

type OrderNumbers interface {
	Next(ctx context.Context) (string, error)
}

// Payment mirrors the gateway-side state we hold locally.
type Payment struct {
	ID              string
	Status          string
	Paid            bool
	ConfirmationURL string
	AmountKop       int64
	Currency        string
}

type CreatePaymentInput struct {
	AmountKop   int64
	Currency    string
	Description string
	OrderNumber string
	Method      domain.GatewayMethod
	ReturnURL   string
}

// Payments are created with immediate capture, so there is no separate
// capture step. CancelPayment voids an intent the provider never captured;
// RefundPayment returns captured money.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, in CreatePaymentInput) (Payment, error)
	GetPayment(ctx context.Context, id string) (Payment, error)
	CancelPayment(ctx context.Context, id string) (Payment, error)
	RefundPayment(ctx context.Context, id string, amountKop int64, currency string) (Payment, error)
}

// Notifier fans an order event out to realtime/email/messaging channels.
// Implementations are best-effort by contract: they log failures and never
// return them to the caller.
type Notifier interface {
	OrderCreated(ctx context.Context, o *domain.Order)
	OrderStatusChanged(ctx context.Context, o *domain.Order)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev OrderEventMsg) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, number string, status string) error
	GetStatus(ctx context.Context, number string) (string, error)
}

// Contact is what the fan-out needs to reach a user off-platform.
type Contact struct {
	Email          string
	TelegramChatID int64
}

type UserDirectory interface {
	Contact(ctx context.Context, userID string) (Contact, error)
}
