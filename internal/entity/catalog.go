package domain

// Variant is the catalog projection the order subsystem reads: one purchasable
// SKU of a product with its own price, discount and stock counter.
type Variant struct {
	ProductID    string `bson:"product_id" json:"productId"`
	ProductTitle string `bson:"product_title" json:"productTitle"`
	Article      string `bson:"article" json:"article"`
	PriceKop     int64  `bson:"price_kop" json:"priceKop"`
	DiscountPct  int64  `bson:"discount_pct" json:"discountPct"`
	Stock        int64  `bson:"count" json:"count"`
	Purchased    int64  `bson:"purchased" json:"purchased"`
}
