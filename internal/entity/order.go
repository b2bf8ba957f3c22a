package domain

import (
	"time"
)

type Status string

const (
	StatusWaitingForPayment Status = "WAITING_FOR_PAYMENT"
	StatusPending           Status = "PENDING"
	StatusProcessing        Status = "PROCESSING"
	StatusConfirmed         Status = "CONFIRMED"
	StatusShipped           Status = "SHIPPED"
	StatusDelivered         Status = "DELIVERED"
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
)

// statusFlow is the single source of truth for legal transitions. Both the
// admin endpoint and the payment webhook feed through it.
var statusFlow = map[Status][]Status{
	StatusWaitingForPayment: {StatusPending, StatusCancelled, StatusRefunded},
	StatusPending:           {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing:        {StatusConfirmed, StatusCancelled, StatusRefunded},
	StatusConfirmed:         {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:           {StatusDelivered, StatusCancelled, StatusRefunded},
	StatusDelivered:         {StatusCancelled, StatusRefunded},
	StatusCancelled:         {},
	StatusRefunded:          {},
}

func (s Status) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range statusFlow[s] {
		if next == to {
			return true
		}
	}
	return false
}

type DeliveryType string

const (
	DeliveryCourier DeliveryType = "courier"
	DeliveryPickup  DeliveryType = "pickup"
	DeliveryPost    DeliveryType = "post"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryCourier, DeliveryPickup, DeliveryPost:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentSBP     PaymentMethod = "sbp"
	PaymentCash    PaymentMethod = "cash"
	PaymentInvoice PaymentMethod = "invoice"
	PaymentInShop  PaymentMethod = "shop"
)

// GatewayMethod is the provider-side payment method type. Empty means the
// method settles outside the gateway (cash, invoice, pay-in-shop).
type GatewayMethod string

const (
	GatewayBankCard GatewayMethod = "bank_card"
	GatewaySBP      GatewayMethod = "sbp"
)

var gatewayMethods = map[PaymentMethod]GatewayMethod{
	PaymentCard:    GatewayBankCard,
	PaymentSBP:     GatewaySBP,
	PaymentCash:    "",
	PaymentInvoice: "",
	PaymentInShop:  "",
}

func (m PaymentMethod) Valid() bool {
	_, ok := gatewayMethods[m]
	return ok
}

func (m PaymentMethod) GatewayMethod() GatewayMethod {
	return gatewayMethods[m]
}

// RequiresOnlinePayment reports whether checkout must create a gateway
// payment before the order can leave WAITING_FOR_PAYMENT.
func (m PaymentMethod) RequiresOnlinePayment() bool {
	return gatewayMethods[m] != ""
}

// InitialStatus is the status assigned at order creation.
func (m PaymentMethod) InitialStatus() Status {
	if m.RequiresOnlinePayment() {
		return StatusWaitingForPayment
	}
	return StatusPending
}

type DeliveryInfo struct {
	City       string `bson:"city" json:"city"`
	Address    string `bson:"address" json:"address"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Recipient  string `bson:"recipient" json:"recipient"`
	Phone      string `bson:"phone" json:"phone"`
	Comment    string `bson:"comment,omitempty" json:"comment,omitempty"`
}

// OrderItem is a priced snapshot taken at checkout. Catalog edits after the
// order is placed never touch these fields.
type OrderItem struct {
	ProductID   string `bson:"product_id" json:"productId"`
	Title       string `bson:"title" json:"title"`
	Article     string `bson:"article" json:"article"`
	Quantity    int64  `bson:"quantity" json:"quantity"`
	PriceKop    int64  `bson:"price_kop" json:"priceKop"`
	DiscountPct int64  `bson:"discount_pct" json:"discountPct"`
}

type Totals struct {
	GrossKop    int64 `bson:"gross_kop" json:"grossKop"`
	DiscountKop int64 `bson:"discount_kop" json:"discountKop"`
	NetKop      int64 `bson:"net_kop" json:"netKop"`
}

type Order struct {
	Number             string        `bson:"_id" json:"number"`
	UserID             string        `bson:"user_id" json:"userId"`
	Items              []OrderItem   `bson:"items" json:"items"`
	Totals             Totals        `bson:"totals" json:"totals"`
	Status             Status        `bson:"status" json:"status"`
	DeliveryType       DeliveryType  `bson:"delivery_type" json:"deliveryType"`
	Delivery           DeliveryInfo  `bson:"delivery" json:"delivery"`
	PaymentMethod      PaymentMethod `bson:"payment_method" json:"paymentMethod"`
	Paid               bool          `bson:"paid" json:"paid"`
	PaymentID          string        `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	TrackingNumber     string        `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	DeliveryDate       *time.Time    `bson:"delivery_date,omitempty" json:"deliveryDate,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
	CancelledAt        *time.Time    `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	DeliveredAt        *time.Time    `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
}

// DefaultCancellationReason is recorded when an order is cancelled without an
// explicit reason and none was recorded before.
const DefaultCancellationReason = "Причина не указана"

// StatusPatch carries the order fields a single status transition owns. Nil
// fields stay untouched. It is written together with the guarded status
// update, so a transition never overwrites fields claimed by a concurrent
// actor.
type StatusPatch struct {
	Paid               *bool
	TrackingNumber     *string
	CancellationReason *string
	DeliveryDate       *time.Time
	CancelledAt        *time.Time
	DeliveredAt        *time.Time
}

// Apply copies the set fields onto the order.
func (p StatusPatch) Apply(o *Order) {
	if p.Paid != nil {
		o.Paid = *p.Paid
	}
	if p.TrackingNumber != nil {
		o.TrackingNumber = *p.TrackingNumber
	}
	if p.CancellationReason != nil {
		o.CancellationReason = *p.CancellationReason
	}
	if p.DeliveryDate != nil {
		o.DeliveryDate = p.DeliveryDate
	}
	if p.CancelledAt != nil {
		o.CancelledAt = p.CancelledAt
	}
	if p.DeliveredAt != nil {
		o.DeliveredAt = p.DeliveredAt
	}
}
