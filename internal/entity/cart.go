package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID string    `bson:"product_id" json:"productId"`
	Article   string    `bson:"article" json:"article"`
	Quantity  int64     `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

// Cart is the live pre-checkout selection of one user. Totals are never
// stored on it; they are projected from current catalog prices on read.
type Cart struct {
	UserID    string     `bson:"_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Add merges into an existing (product, article) line instead of duplicating it.
func (c *Cart) Add(productID, article string, quantity int64, now time.Time) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Article == article {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = now
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Article:   article,
		Quantity:  quantity,
		AddedAt:   now,
	})
	c.UpdatedAt = now
}

func (c *Cart) SetQuantity(productID, article string, quantity int64, now time.Time) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Article == article {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = now
			return nil
		}
	}
	return ErrCartLineNotFound
}

func (c *Cart) Remove(productID, article string, now time.Time) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Article == article {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = now
			return nil
		}
	}
	return ErrCartLineNotFound
}

func (c *Cart) Clear(now time.Time) {
	c.Items = nil
	c.UpdatedAt = now
}

// PricedLine is a cart line joined with live catalog pricing. At checkout the
// same shape becomes the order's immutable item snapshot.
type PricedLine struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Article     string `json:"article"`
	Quantity    int64  `json:"quantity"`
	PriceKop    int64  `json:"priceKop"`
	DiscountPct int64  `json:"discountPct"`
}

var hundred = decimal.NewFromInt(100)

// NetUnitKop applies the discount percent to the unit price, rounded to kopecks.
func (l PricedLine) NetUnitKop() int64 {
	price := decimal.NewFromInt(l.PriceKop)
	factor := hundred.Sub(decimal.NewFromInt(l.DiscountPct)).Div(hundred)
	return price.Mul(factor).Round(0).IntPart()
}

// TotalsOf computes gross/discount/net over priced lines.
func TotalsOf(lines []PricedLine) Totals {
	var t Totals
	for _, l := range lines {
		gross := l.PriceKop * l.Quantity
		net := l.NetUnitKop() * l.Quantity
		t.GrossKop += gross
		t.NetKop += net
		t.DiscountKop += gross - net
	}
	return t
}

// SnapshotItems converts priced lines into order items (deep copy by value).
func SnapshotItems(lines []PricedLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID:   l.ProductID,
			Title:       l.Title,
			Article:     l.Article,
			Quantity:    l.Quantity,
			PriceKop:    l.PriceKop,
			DiscountPct: l.DiscountPct,
		})
	}
	return items
}
