package usecase

import (
	"context"
	"sync"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
)

// Hand-rolled fakes: function fields for behavior, recorded state for
// assertions. Unset fields mean "not expected to be called" and panic loudly.

type fakeOrderRepo struct {
	mu      sync.Mutex
	created []*domain.Order

	getByNumberFn    func(number string) (*domain.Order, error)
	getByPaymentIDFn func(paymentID string) (*domain.Order, error)
	createErr        error

	updateStatusIfFn func(number string, from, to domain.Status) (bool, error)
	claims           []statusClaim
}

type statusClaim struct {
	number   string
	from, to domain.Status
	patch    domain.StatusPatch
}

func (f *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, o)
	return nil
}

func (f *fakeOrderRepo) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	return f.getByNumberFn(number)
}

func (f *fakeOrderRepo) GetByPaymentID(_ context.Context, paymentID string) (*domain.Order, error) {
	return f.getByPaymentIDFn(paymentID)
}

func (f *fakeOrderRepo) ListByUser(context.Context, string) ([]domain.Order, error) { return nil, nil }
func (f *fakeOrderRepo) List(context.Context) ([]domain.Order, error)               { return nil, nil }

func (f *fakeOrderRepo) UpdateStatusIf(_ context.Context, number string, from, to domain.Status, patch domain.StatusPatch) (bool, error) {
	f.mu.Lock()
	f.claims = append(f.claims, statusClaim{number: number, from: from, to: to, patch: patch})
	f.mu.Unlock()
	return f.updateStatusIfFn(number, from, to)
}

type fakeCartRepo struct {
	cart     *domain.Cart
	getErr   error
	clearErr error
	cleared  []string
	upserted []*domain.Cart
}

func (f *fakeCartRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.cart == nil {
		return &domain.Cart{UserID: userID}, nil
	}
	return f.cart, nil
}

func (f *fakeCartRepo) Upsert(_ context.Context, cart *domain.Cart) error {
	f.upserted = append(f.upserted, cart)
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeCatalog struct {
	variants map[string]*domain.Variant // keyed by article

	decremented  []string
	decrementErr error
	purchased    []string
}

func (f *fakeCatalog) ResolveVariant(_ context.Context, _, article string) (*domain.Variant, error) {
	v, ok := f.variants[article]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	return v, nil
}

func (f *fakeCatalog) CheckAvailability(_ context.Context, _, article string, quantity int64) (bool, error) {
	v, ok := f.variants[article]
	if !ok {
		return false, domain.ErrVariantNotFound
	}
	return v.Stock >= quantity, nil
}

func (f *fakeCatalog) DecrementStock(_ context.Context, _, article string, quantity int64) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}
	f.variants[article].Stock -= quantity
	f.decremented = append(f.decremented, article)
	return nil
}

func (f *fakeCatalog) IncrementPurchased(_ context.Context, _, article string, quantity int64) error {
	f.purchased = append(f.purchased, article)
	return nil
}

type fakeNumbers struct {
	next string
	err  error
}

func (f *fakeNumbers) Next(context.Context) (string, error) { return f.next, f.err }

type fakeGateway struct {
	createFn func(in CreatePaymentInput) (Payment, error)
	refundFn func(id string, amountKop int64, currency string) (Payment, error)
	cancelFn func(id string) (Payment, error)

	createCalls []CreatePaymentInput
	refundCalls []string
	cancelCalls []string
	mu          sync.Mutex
}

func (f *fakeGateway) CreatePayment(_ context.Context, in CreatePaymentInput) (Payment, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, in)
	f.mu.Unlock()
	return f.createFn(in)
}

func (f *fakeGateway) GetPayment(context.Context, string) (Payment, error) { return Payment{}, nil }

func (f *fakeGateway) CancelPayment(_ context.Context, id string) (Payment, error) {
	f.mu.Lock()
	f.cancelCalls = append(f.cancelCalls, id)
	f.mu.Unlock()
	if f.cancelFn != nil {
		return f.cancelFn(id)
	}
	return Payment{ID: id, Status: "canceled"}, nil
}

func (f *fakeGateway) RefundPayment(_ context.Context, id string, amountKop int64, currency string) (Payment, error) {
	f.mu.Lock()
	f.refundCalls = append(f.refundCalls, id)
	f.mu.Unlock()
	if f.refundFn != nil {
		return f.refundFn(id, amountKop, currency)
	}
	return Payment{ID: "refund-" + id}, nil
}

type fakeNotifier struct {
	created []string
	changed []string
}

func (f *fakeNotifier) OrderCreated(_ context.Context, o *domain.Order) {
	f.created = append(f.created, o.Number)
}

func (f *fakeNotifier) OrderStatusChanged(_ context.Context, o *domain.Order) {
	f.changed = append(f.changed, o.Number+":"+string(o.Status))
}

type fakeEvents struct {
	published []OrderEventMsg
	err       error
}

func (f *fakeEvents) PublishOrderEvent(_ context.Context, ev OrderEventMsg) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

type fakeCache struct {
	statuses map[string]string
	err      error
}

func (f *fakeCache) SetStatus(_ context.Context, number, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.statuses == nil {
		f.statuses = map[string]string{}
	}
	f.statuses[number] = status
	return nil
}

func (f *fakeCache) GetStatus(_ context.Context, number string) (string, error) {
	return f.statuses[number], f.err
}

type fakeIdem struct {
	seen map[string]bool
	vals map[string]string
	err  error
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	k := scope + ":" + key
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	if f.err != nil {
		return f.err
	}
	if f.vals == nil {
		f.vals = map[string]string{}
	}
	f.vals[scope+":"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.vals[scope+":"+key]
	return v, ok, nil
}
