package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture() (*Checkout, *fakeOrderRepo, *fakeCartRepo, *fakeCatalog, *fakeGateway, *fakeNotifier, *fakeEvents, *fakeCache) {
	uc, orders, carts, catalog, gateway, notifier, events, cache, _ := newCheckoutFixtureWithIdem()
	return uc, orders, carts, catalog, gateway, notifier, events, cache
}

func newCheckoutFixtureWithIdem() (*Checkout, *fakeOrderRepo, *fakeCartRepo, *fakeCatalog, *fakeGateway, *fakeNotifier, *fakeEvents, *fakeCache, *fakeIdem) {
	now := time.Now().UTC()

	orders := &fakeOrderRepo{}
	carts := &fakeCartRepo{
		cart: &domain.Cart{
			UserID: "u1",
			Items: []domain.CartItem{
				{ProductID: "p1", Article: "A100", Quantity: 2, AddedAt: now},
				{ProductID: "p2", Article: "B200", Quantity: 1, AddedAt: now},
			},
		},
	}
	catalog := &fakeCatalog{
		variants: map[string]*domain.Variant{
			"A100": {ProductID: "p1", ProductTitle: "Кроссовки", Article: "A100", PriceKop: 10000, DiscountPct: 10, Stock: 5},
			"B200": {ProductID: "p2", ProductTitle: "Футболка", Article: "B200", PriceKop: 5000, Stock: 3},
		},
	}
	gateway := &fakeGateway{
		createFn: func(in CreatePaymentInput) (Payment, error) {
			return Payment{ID: "pay-1", Status: "pending", ConfirmationURL: "https://pay.example/confirm"}, nil
		},
	}
	notifier := &fakeNotifier{}
	events := &fakeEvents{}
	cache := &fakeCache{}
	idem := &fakeIdem{}

	uc := NewCheckout(orders, carts, catalog, &fakeNumbers{next: "SH-000001"},
		gateway, notifier, events, cache, idem, time.Second)
	return uc, orders, carts, catalog, gateway, notifier, events, cache, idem
}

func courierInput() CheckoutInput {
	return CheckoutInput{
		UserID:        "u1",
		DeliveryType:  domain.DeliveryCourier,
		PaymentMethod: domain.PaymentCard,
		ReturnURL:     "https://shop.example/orders",
		Delivery: domain.DeliveryInfo{
			City:      "Москва",
			Address:   "ул. Ленина, 1",
			Recipient: "Иванов Иван",
			Phone:     "+79991234567",
		},
	}
}

func TestCheckoutOnlinePayment(t *testing.T) {
	uc, orders, carts, catalog, gateway, notifier, events, cache := newCheckoutFixture()

	out, err := uc.Execute(context.Background(), courierInput())
	require.NoError(t, err)

	order := out.Order
	assert.Equal(t, "SH-000001", order.Number)
	assert.Equal(t, domain.StatusWaitingForPayment, order.Status)
	assert.Equal(t, "pay-1", order.PaymentID)
	assert.Equal(t, "https://pay.example/confirm", out.ConfirmationURL)

	// Snapshot totals: 2 * 9000 + 5000.
	assert.Equal(t, int64(25000), order.Totals.GrossKop)
	assert.Equal(t, int64(23000), order.Totals.NetKop)
	assert.Len(t, order.Items, 2)

	// Payment is created before the order is persisted, with provider method type.
	require.Len(t, gateway.createCalls, 1)
	assert.Equal(t, int64(23000), gateway.createCalls[0].AmountKop)
	assert.Equal(t, domain.GatewayBankCard, gateway.createCalls[0].Method)
	assert.Equal(t, "SH-000001", gateway.createCalls[0].OrderNumber)

	require.Len(t, orders.created, 1)
	assert.Equal(t, []string{"SH-000001"}, notifier.created)

	// Inventory moved and the cart is gone.
	assert.Equal(t, int64(3), catalog.variants["A100"].Stock)
	assert.Equal(t, int64(2), catalog.variants["B200"].Stock)
	assert.ElementsMatch(t, []string{"A100", "B200"}, catalog.purchased)
	assert.Equal(t, []string{"u1"}, carts.cleared)

	assert.Equal(t, string(domain.StatusWaitingForPayment), cache.statuses["SH-000001"])
	require.Len(t, events.published, 1)
	assert.Equal(t, "SH-000001", events.published[0].OrderNumber)
}

func TestCheckoutOfflinePayment(t *testing.T) {
	uc, _, _, _, gateway, _, _, _ := newCheckoutFixture()

	in := courierInput()
	in.PaymentMethod = domain.PaymentCash

	out, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// No gateway round-trip, no confirmation step, order goes straight to work.
	assert.Empty(t, gateway.createCalls)
	assert.Equal(t, domain.StatusPending, out.Order.Status)
	assert.Empty(t, out.Order.PaymentID)
	assert.Empty(t, out.ConfirmationURL)
}

func TestCheckoutEmptyCart(t *testing.T) {
	uc, orders, carts, _, gateway, _, _, _ := newCheckoutFixture()
	carts.cart = &domain.Cart{UserID: "u1"}

	_, err := uc.Execute(context.Background(), courierInput())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	// Pure failure: nothing happened anywhere.
	assert.Empty(t, orders.created)
	assert.Empty(t, gateway.createCalls)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	uc, orders, carts, catalog, gateway, _, _, _ := newCheckoutFixture()
	catalog.variants["A100"].Stock = 1

	_, err := uc.Execute(context.Background(), courierInput())

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "A100", stockErr.Article)
	assert.Equal(t, int64(2), stockErr.Requested)
	assert.Equal(t, int64(1), stockErr.Available)

	assert.Empty(t, orders.created)
	assert.Empty(t, gateway.createCalls)
	assert.Empty(t, carts.cleared)
}

func TestCheckoutGatewayFailureLeavesNoOrder(t *testing.T) {
	uc, orders, carts, catalog, gateway, notifier, _, _ := newCheckoutFixture()
	gateway.createFn = func(CreatePaymentInput) (Payment, error) {
		return Payment{}, domain.ErrGatewayUnavailable
	}

	_, err := uc.Execute(context.Background(), courierInput())
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)

	// No order record may exist without a definitive payment outcome.
	assert.Empty(t, orders.created)
	assert.Empty(t, notifier.created)
	assert.Equal(t, int64(5), catalog.variants["A100"].Stock)
	assert.Empty(t, carts.cleared)
}

func TestCheckoutValidation(t *testing.T) {
	uc, orders, _, _, _, _, _, _ := newCheckoutFixture()

	t.Run("unknown delivery type", func(t *testing.T) {
		in := courierInput()
		in.DeliveryType = "drone"
		_, err := uc.Execute(context.Background(), in)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		in := courierInput()
		in.PaymentMethod = "crypto"
		_, err := uc.Execute(context.Background(), in)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing address for courier", func(t *testing.T) {
		in := courierInput()
		in.Delivery.Address = ""
		_, err := uc.Execute(context.Background(), in)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "address", verr.Field)
	})

	assert.Empty(t, orders.created)
}

func TestCheckoutIdempotencyKeyReplaysOrder(t *testing.T) {
	uc, orders, _, _, gateway, _, _, _, _ := newCheckoutFixtureWithIdem()
	orders.getByNumberFn = func(number string) (*domain.Order, error) {
		for _, o := range orders.created {
			if o.Number == number {
				return o, nil
			}
		}
		return nil, domain.ErrOrderNotFound
	}

	in := courierInput()
	in.IdempotencyKey = "retry-abc"

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// The retry returns the order already created and never re-charges.
	assert.Equal(t, first.Order.Number, second.Order.Number)
	assert.Len(t, orders.created, 1)
	assert.Len(t, gateway.createCalls, 1)
}

func TestCheckoutIdempotencyKeysAreScopedPerUser(t *testing.T) {
	uc, orders, _, _, _, _, _, _, idem := newCheckoutFixtureWithIdem()

	// Another user already used the same key; it must not shadow this checkout.
	require.NoError(t, idem.Remember(context.Background(), "checkout", "u2:retry-abc", "SH-999999"))

	in := courierInput()
	in.IdempotencyKey = "retry-abc"

	out, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "SH-000001", out.Order.Number)
	assert.Len(t, orders.created, 1)
}

func TestCheckoutSurvivesPostPersistFailures(t *testing.T) {
	uc, orders, carts, catalog, _, _, events, cache := newCheckoutFixture()
	catalog.decrementErr = errors.New("mongo down")
	carts.clearErr = errors.New("mongo down")
	events.err = errors.New("kafka down")
	cache.err = errors.New("redis down")

	out, err := uc.Execute(context.Background(), courierInput())

	// The order exists; everything after persistence is reconciliation.
	require.NoError(t, err)
	assert.Equal(t, "SH-000001", out.Order.Number)
	require.Len(t, orders.created, 1)
}
