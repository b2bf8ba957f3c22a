package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrVariantNotFound    = errors.New("product variant not found")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrTerminalStatus     = errors.New("order is in a terminal status")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
)

// InsufficientStockError names the short article so the client can adjust.
type InsufficientStockError struct {
	Article   string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for article %s: requested %d, available %d",
		e.Article, e.Requested, e.Available)
}

// InvalidTransitionError reports an attempt outside the legal transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
