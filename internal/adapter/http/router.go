package http

import (
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/http/middleware"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	orders *OrderHandler,
	carts *CartHandler,
	webhook *WebhookHandler,
	ws *WSHandler,
	tokens *TokenHandler,
	authz *middleware.Authz,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", tokens.IssueToken)

	// The provider authenticates by source, not by bearer token.
	r.POST("/v1/payments/notifications", webhook.HandleNotification)

	r.GET("/v1/ws", ws.Attach)

	v1 := r.Group("/v1", authz.Require())
	{
		v1.GET("/cart", carts.Get)
		v1.POST("/cart/items", carts.AddItem)
		v1.PATCH("/cart/items", carts.UpdateQuantity)
		v1.DELETE("/cart/items/:productId/:article", carts.RemoveItem)
		v1.DELETE("/cart", carts.Clear)

		v1.POST("/orders", orders.Checkout)
		v1.GET("/orders", orders.ListMine)
		v1.GET("/orders/:number", orders.GetByNumber)
	}

	admin := r.Group("/v1/admin", authz.Require(security.RoleAdmin, security.RoleCreator))
	{
		admin.GET("/orders", orders.ListAll)
		admin.PATCH("/orders/:number/status", orders.UpdateStatus)
	}

	return r
}
