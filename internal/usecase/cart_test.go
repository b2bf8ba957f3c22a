package usecase

import (
	"context"
	"testing"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture() (*CartService, *fakeCartRepo, *fakeCatalog) {
	carts := &fakeCartRepo{}
	catalog := &fakeCatalog{
		variants: map[string]*domain.Variant{
			"A100": {ProductID: "p1", ProductTitle: "Кроссовки", Article: "A100", PriceKop: 10000, DiscountPct: 10, Stock: 5},
		},
	}
	return NewCartService(carts, catalog), carts, catalog
}

func TestCartServiceAddItem(t *testing.T) {
	svc, carts, _ := newCartFixture()

	view, err := svc.AddItem(context.Background(), "u1", "p1", "A100", 2)
	require.NoError(t, err)

	require.Len(t, carts.upserted, 1)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Кроссовки", view.Lines[0].Title)
	assert.Equal(t, int64(10000), view.Lines[0].PriceKop)
	assert.Equal(t, domain.Totals{GrossKop: 20000, DiscountKop: 2000, NetKop: 18000}, view.Totals)
}

func TestCartServiceAddUnknownVariant(t *testing.T) {
	svc, carts, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), "u1", "p1", "NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)
	assert.Empty(t, carts.upserted)
}

func TestCartServiceQuantityValidation(t *testing.T) {
	svc, _, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), "u1", "p1", "A100", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.UpdateQuantity(context.Background(), "u1", "p1", "A100", -3)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCartServiceUpdateMissingLine(t *testing.T) {
	svc, _, _ := newCartFixture()

	_, err := svc.UpdateQuantity(context.Background(), "u1", "p1", "A100", 2)
	assert.ErrorIs(t, err, domain.ErrCartLineNotFound)
}

func TestCartServiceGetEmptyCart(t *testing.T) {
	svc, _, _ := newCartFixture()

	view, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, view.Cart.Empty())
	assert.Empty(t, view.Lines)
	assert.Equal(t, domain.Totals{}, view.Totals)
}

func TestCartServiceRemoveItem(t *testing.T) {
	svc, carts, _ := newCartFixture()

	_, err := svc.AddItem(context.Background(), "u1", "p1", "A100", 1)
	require.NoError(t, err)
	carts.cart = carts.upserted[0]

	view, err := svc.RemoveItem(context.Background(), "u1", "p1", "A100")
	require.NoError(t, err)
	assert.True(t, view.Cart.Empty())
}
