package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/http/middleware"
	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	checkout *usecase.Checkout
	status   *usecase.UpdateStatus
	query    usecase.OrderRepo
}

func NewOrderHandler(checkout *usecase.Checkout, status *usecase.UpdateStatus, query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{checkout: checkout, status: status, query: query}
}

type checkoutReq struct {
	DeliveryType  string `json:"deliveryType" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	ReturnURL     string `json:"returnUrl"`

	DeliveryInfo struct {
		City       string `json:"city"`
		Address    string `json:"address"`
		PostalCode string `json:"postalCode"`
		Recipient  string `json:"recipient"`
		Phone      string `json:"phone" binding:"required"`
		Comment    string `json:"comment"`
	} `json:"deliveryInfo" binding:"required"`
}

type checkoutResp struct {
	Order           *domain.Order `json:"order"`
	ConfirmationURL string        `json:"confirmationUrl,omitempty"`
}

// Checkout handler: translate to use case input.
func (h *OrderHandler) Checkout(c *gin.Context) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	out, err := h.checkout.Execute(ctx, usecase.CheckoutInput{
		UserID:         ident.UserID,
		DeliveryType:   domain.DeliveryType(req.DeliveryType),
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		ReturnURL:      req.ReturnURL,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
		Delivery: domain.DeliveryInfo{
			City:       req.DeliveryInfo.City,
			Address:    req.DeliveryInfo.Address,
			PostalCode: req.DeliveryInfo.PostalCode,
			Recipient:  req.DeliveryInfo.Recipient,
			Phone:      req.DeliveryInfo.Phone,
			Comment:    req.DeliveryInfo.Comment,
		},
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	middleware.CountOrderCreated(string(out.Order.PaymentMethod))
	c.JSON(http.StatusCreated, checkoutResp{
		Order:           out.Order,
		ConfirmationURL: out.ConfirmationURL,
	})
}

func (h *OrderHandler) GetByNumber(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	number := c.Param("number")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.query.GetByNumber(ctx, number)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if order.UserID != ident.UserID && !ident.IsStaff() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.query.ListByUser(ctx, ident.UserID)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.query.List(ctx)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateStatusReq struct {
	Status             string     `json:"status" binding:"required"`
	CancellationReason string     `json:"cancellationReason"`
	DeliveryDate       *time.Time `json:"deliveryDate"`
	TrackingNumber     string     `json:"trackingNumber"`
}

// UpdateStatus is the administrative transition endpoint.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := h.status.Execute(ctx, usecase.UpdateStatusInput{
		Number:             c.Param("number"),
		To:                 domain.Status(req.Status),
		CancellationReason: req.CancellationReason,
		DeliveryDate:       req.DeliveryDate,
		TrackingNumber:     req.TrackingNumber,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// writeOrderError maps domain errors onto stable HTTP codes.
func writeOrderError(c *gin.Context, err error) {
	var (
		stockErr      *domain.InsufficientStockError
		transitionErr *domain.InvalidTransitionError
		validationErr *domain.ValidationError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart", "message": "cart is empty"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "insufficient_stock",
			"message":   stockErr.Error(),
			"article":   stockErr.Article,
			"available": stockErr.Available,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"field":   validationErr.Field,
			"message": validationErr.Error(),
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "message": transitionErr.Error()})
	case errors.Is(err, domain.ErrTerminalStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "terminal_status", "message": err.Error()})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_status", "message": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domain.ErrGatewayRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "gateway_rejected", "message": err.Error()})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_unavailable", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
