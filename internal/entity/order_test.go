package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"payment confirmation", StatusWaitingForPayment, StatusPending, true},
		{"take into work", StatusPending, StatusProcessing, true},
		{"confirm", StatusProcessing, StatusConfirmed, true},
		{"ship", StatusConfirmed, StatusShipped, true},
		{"deliver", StatusShipped, StatusDelivered, true},
		{"cancel fresh order", StatusWaitingForPayment, StatusCancelled, true},
		{"cancel shipped order", StatusShipped, StatusCancelled, true},
		{"refund delivered order", StatusDelivered, StatusRefunded, true},

		{"no skipping ahead", StatusPending, StatusShipped, false},
		{"no going back", StatusShipped, StatusConfirmed, false},
		{"webhook path only", StatusWaitingForPayment, StatusProcessing, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"refunded is terminal", StatusRefunded, StatusCancelled, false},
		{"no self transition", StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRefunded.Terminal())
	assert.False(t, StatusDelivered.Terminal())
	assert.False(t, StatusWaitingForPayment.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("SHIPPED_BACK").Valid())
	assert.False(t, Status("").Valid())
}

func TestPaymentMethodGatewayMapping(t *testing.T) {
	assert.Equal(t, GatewayBankCard, PaymentCard.GatewayMethod())
	assert.Equal(t, GatewaySBP, PaymentSBP.GatewayMethod())
	assert.Equal(t, GatewayMethod(""), PaymentCash.GatewayMethod())
	assert.Equal(t, GatewayMethod(""), PaymentInvoice.GatewayMethod())
	assert.Equal(t, GatewayMethod(""), PaymentInShop.GatewayMethod())
}

func TestPaymentMethodInitialStatus(t *testing.T) {
	// Online methods park the order until the provider confirms; offline
	// methods go straight into the work queue.
	assert.Equal(t, StatusWaitingForPayment, PaymentCard.InitialStatus())
	assert.Equal(t, StatusWaitingForPayment, PaymentSBP.InitialStatus())
	assert.Equal(t, StatusPending, PaymentCash.InitialStatus())
	assert.Equal(t, StatusPending, PaymentInvoice.InitialStatus())
	assert.Equal(t, StatusPending, PaymentInShop.InitialStatus())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCard.Valid())
	assert.False(t, PaymentMethod("crypto").Valid())
}

func TestDeliveryInfoValidate(t *testing.T) {
	full := DeliveryInfo{
		City:      "Москва",
		Address:   "ул. Ленина, 1",
		Recipient: "Иванов Иван",
		Phone:     "+7 (999) 123-45-67",
	}

	t.Run("courier with full payload", func(t *testing.T) {
		assert.NoError(t, full.Validate(DeliveryCourier))
	})

	t.Run("pickup needs only a phone", func(t *testing.T) {
		d := DeliveryInfo{Phone: "89991234567"}
		assert.NoError(t, d.Validate(DeliveryPickup))
	})

	t.Run("courier without address", func(t *testing.T) {
		d := full
		d.Address = "  "
		var verr *ValidationError
		err := d.Validate(DeliveryCourier)
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "address", verr.Field)
	})

	t.Run("post without recipient", func(t *testing.T) {
		d := full
		d.Recipient = ""
		var verr *ValidationError
		err := d.Validate(DeliveryPost)
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "recipient", verr.Field)
	})

	t.Run("bad phone rejected for any delivery type", func(t *testing.T) {
		d := full
		d.Phone = "not-a-phone"
		var verr *ValidationError
		assert.ErrorAs(t, d.Validate(DeliveryPickup), &verr)
		assert.Equal(t, "phone", verr.Field)
	})

	t.Run("phone too short", func(t *testing.T) {
		d := full
		d.Phone = "+7123"
		assert.Error(t, d.Validate(DeliveryCourier))
	})
}
