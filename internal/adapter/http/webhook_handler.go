package http

import (
	"net/http"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
)

// WebhookHandler ingests payment-provider notifications. Ack-first policy:
// the provider always gets a 200, otherwise it retries in a storm; whatever
// goes wrong internally is logged and handled out of band.
type WebhookHandler struct {
	webhook *usecase.PaymentWebhook
}

func NewWebhookHandler(webhook *usecase.PaymentWebhook) *WebhookHandler {
	return &WebhookHandler{webhook: webhook}
}

func (h *WebhookHandler) HandleNotification(c *gin.Context) {
	var ev usecase.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		logging.From(c).Error("undecodable provider notification", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.webhook.Handle(c.Request.Context(), ev); err != nil {
		logging.From(c).Error("provider notification processing failed",
			"event", ev.Event, "payment_id", ev.Object.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
