package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartAddMergesLines(t *testing.T) {
	now := time.Now().UTC()
	c := &Cart{UserID: "u1"}

	c.Add("p1", "A100", 2, now)
	c.Add("p1", "A100", 3, now)
	c.Add("p1", "A200", 1, now)

	assert.Len(t, c.Items, 2)
	assert.Equal(t, int64(5), c.Items[0].Quantity)
	assert.Equal(t, "A200", c.Items[1].Article)
}

func TestCartSetQuantity(t *testing.T) {
	now := time.Now().UTC()
	c := &Cart{UserID: "u1"}
	c.Add("p1", "A100", 2, now)

	assert.NoError(t, c.SetQuantity("p1", "A100", 7, now))
	assert.Equal(t, int64(7), c.Items[0].Quantity)

	assert.ErrorIs(t, c.SetQuantity("p1", "NOPE", 1, now), ErrCartLineNotFound)
}

func TestCartRemove(t *testing.T) {
	now := time.Now().UTC()
	c := &Cart{UserID: "u1"}
	c.Add("p1", "A100", 1, now)
	c.Add("p2", "B200", 1, now)

	assert.NoError(t, c.Remove("p1", "A100", now))
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "B200", c.Items[0].Article)

	assert.ErrorIs(t, c.Remove("p1", "A100", now), ErrCartLineNotFound)
}

func TestNetUnitKop(t *testing.T) {
	cases := []struct {
		name     string
		priceKop int64
		discount int64
		want     int64
	}{
		{"no discount", 10000, 0, 10000},
		{"flat 10 percent", 10000, 10, 9000},
		{"rounds to kopeck", 9999, 15, 8499}, // 9999 * 0.85 = 8499.15
		{"full discount", 5000, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := PricedLine{PriceKop: tc.priceKop, DiscountPct: tc.discount}
			assert.Equal(t, tc.want, l.NetUnitKop())
		})
	}
}

func TestTotalsOf(t *testing.T) {
	lines := []PricedLine{
		{PriceKop: 10000, DiscountPct: 10, Quantity: 2}, // gross 20000, net 18000
		{PriceKop: 5000, DiscountPct: 0, Quantity: 1},   // gross 5000, net 5000
	}
	got := TotalsOf(lines)
	assert.Equal(t, Totals{GrossKop: 25000, DiscountKop: 2000, NetKop: 23000}, got)
}

func TestSnapshotItems(t *testing.T) {
	lines := []PricedLine{
		{ProductID: "p1", Title: "Кроссовки", Article: "A100", Quantity: 2, PriceKop: 10000, DiscountPct: 10},
	}
	items := SnapshotItems(lines)
	assert.Len(t, items, 1)
	assert.Equal(t, OrderItem{
		ProductID: "p1", Title: "Кроссовки", Article: "A100",
		Quantity: 2, PriceKop: 10000, DiscountPct: 10,
	}, items[0])
}
