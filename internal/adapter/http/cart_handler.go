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

type CartHandler struct {
	carts *usecase.CartService
}

func NewCartHandler(carts *usecase.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartLineReq struct {
	ProductID string `json:"productId" binding:"required"`
	Article   string `json:"article" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gte=1"`
}

type cartViewResp struct {
	Items  []domain.CartItem   `json:"items"`
	Lines  []domain.PricedLine `json:"lines"`
	Totals domain.Totals       `json:"totals"`
}

func cartResp(view usecase.CartView) cartViewResp {
	return cartViewResp{Items: view.Cart.Items, Lines: view.Lines, Totals: view.Totals}
}

func (h *CartHandler) Get(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.carts.Get(ctx, ident.UserID)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResp(view))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	var req cartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.carts.AddItem(ctx, ident.UserID, req.ProductID, req.Article, req.Quantity)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResp(view))
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	var req cartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.carts.UpdateQuantity(ctx, ident.UserID, req.ProductID, req.Article, req.Quantity)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResp(view))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.carts.RemoveItem(ctx, ident.UserID, c.Param("productId"), c.Param("article"))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResp(view))
}

func (h *CartHandler) Clear(c *gin.Context) {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.carts.Clear(ctx, ident.UserID); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func reqCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_quantity", "message": err.Error()})
	case errors.Is(err, domain.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "variant_not_found", "message": err.Error()})
	case errors.Is(err, domain.ErrCartLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart_line_not_found", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
