package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderRepo struct {
	order     *domain.Order
	claims    int
	lastPatch domain.StatusPatch
}

func (s *stubOrderRepo) Create(context.Context, *domain.Order) error { return nil }
func (s *stubOrderRepo) GetByNumber(context.Context, string) (*domain.Order, error) {
	return s.order, nil
}
func (s *stubOrderRepo) GetByPaymentID(_ context.Context, paymentID string) (*domain.Order, error) {
	if s.order == nil || s.order.PaymentID != paymentID {
		return nil, domain.ErrOrderNotFound
	}
	cp := *s.order
	return &cp, nil
}
func (s *stubOrderRepo) ListByUser(context.Context, string) ([]domain.Order, error) { return nil, nil }
func (s *stubOrderRepo) List(context.Context) ([]domain.Order, error)               { return nil, nil }
func (s *stubOrderRepo) UpdateStatusIf(_ context.Context, _ string, from, _ domain.Status, patch domain.StatusPatch) (bool, error) {
	s.claims++
	s.lastPatch = patch
	return s.order.Status == from, nil
}

type stubIdem struct{}

func (stubIdem) TryLock(context.Context, string, string) (bool, error)   { return true, nil }
func (stubIdem) Remember(context.Context, string, string, string) error  { return nil }
func (stubIdem) Recall(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

type stubNotifier struct{}

func (stubNotifier) OrderCreated(context.Context, *domain.Order)       {}
func (stubNotifier) OrderStatusChanged(context.Context, *domain.Order) {}

type stubEvents struct{}

func (stubEvents) PublishOrderEvent(context.Context, usecase.OrderEventMsg) error { return nil }

type stubCache struct{}

func (stubCache) SetStatus(context.Context, string, string) error { return nil }
func (stubCache) GetStatus(context.Context, string) (string, error) {
	return "", nil
}

func newWebhookRouter(repo *stubOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	uc := usecase.NewPaymentWebhook(repo, stubIdem{}, stubNotifier{}, stubEvents{}, stubCache{})
	h := NewWebhookHandler(uc)

	r := gin.New()
	r.POST("/v1/payments/notifications", h.HandleNotification)
	return r
}

func postNotification(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/notifications", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookAcknowledgesSuccess(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{
		Number: "SH-000001", UserID: "u1",
		Status: domain.StatusWaitingForPayment, PaymentID: "pay-1",
	}}
	r := newWebhookRouter(repo)

	w := postNotification(t, r, `{
		"event": "payment.succeeded",
		"object": {"id": "pay-1", "status": "succeeded", "paid": true,
			"amount": {"value": "230.00", "currency": "RUB"},
			"metadata": {"order_number": "SH-000001"}}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	assert.Equal(t, 1, repo.claims)
	require.NotNil(t, repo.lastPatch.Paid)
	assert.True(t, *repo.lastPatch.Paid)
}

func TestWebhookAcknowledgesUnknownPayment(t *testing.T) {
	repo := &stubOrderRepo{}
	r := newWebhookRouter(repo)

	// Processing fails internally, the provider still gets its 200.
	w := postNotification(t, r, `{"event": "payment.succeeded", "object": {"id": "pay-unknown"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}

func TestWebhookAcknowledgesGarbage(t *testing.T) {
	repo := &stubOrderRepo{}
	r := newWebhookRouter(repo)

	w := postNotification(t, r, `{not json at all`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.claims)
}
