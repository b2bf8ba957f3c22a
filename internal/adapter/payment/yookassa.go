package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.yookassa.ru/v3"

// YooKassa is the provider-specific implementation of the payment gateway
// port. Every call carries a fresh Idempotence-Key and basic auth.
type YooKassa struct {
	baseURL   string
	shopID    string
	secretKey string
	http      *http.Client
}

func NewYooKassa(baseURL, shopID, secretKey string, client *http.Client) *YooKassa {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &YooKassa{baseURL: baseURL, shopID: shopID, secretKey: secretKey, http: client}
}

type amountBody struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type paymentBody struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Paid         bool       `json:"paid"`
	Amount       amountBody `json:"amount"`
	Confirmation *struct {
		Type            string `json:"type"`
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation,omitempty"`
}

type apiError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

func kopecksToValue(kop int64) string {
	return decimal.NewFromInt(kop).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func valueToKopecks(value string) int64 {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (y *YooKassa) CreatePayment(ctx context.Context, in usecase.CreatePaymentInput) (usecase.Payment, error) {
	body := map[string]any{
		"amount": amountBody{
			Value:    kopecksToValue(in.AmountKop),
			Currency: in.Currency,
		},
		"capture":     true,
		"description": in.Description,
		"metadata":    map[string]string{"order_number": in.OrderNumber},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": in.ReturnURL,
		},
	}
	if in.Method != "" {
		body["payment_method_data"] = map[string]string{"type": string(in.Method)}
	}
	return y.do(ctx, http.MethodPost, "/payments", body)
}

func (y *YooKassa) GetPayment(ctx context.Context, id string) (usecase.Payment, error) {
	return y.do(ctx, http.MethodGet, "/payments/"+id, nil)
}

// CapturePayment finalizes a two-stage payment. The checkout flow creates
// payments with capture:true and never needs it; it is part of the provider
// contract for manually-settled payments.
func (y *YooKassa) CapturePayment(ctx context.Context, id string) (usecase.Payment, error) {
	return y.do(ctx, http.MethodPost, "/payments/"+id+"/capture", map[string]any{})
}

func (y *YooKassa) CancelPayment(ctx context.Context, id string) (usecase.Payment, error) {
	return y.do(ctx, http.MethodPost, "/payments/"+id+"/cancel", map[string]any{})
}

func (y *YooKassa) RefundPayment(ctx context.Context, id string, amountKop int64, currency string) (usecase.Payment, error) {
	body := map[string]any{
		"payment_id": id,
		"amount": amountBody{
			Value:    kopecksToValue(amountKop),
			Currency: currency,
		},
	}
	return y.do(ctx, http.MethodPost, "/refunds", body)
}

func (y *YooKassa) do(ctx context.Context, method, path string, body any) (usecase.Payment, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return usecase.Payment{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, y.baseURL+path, reader)
	if err != nil {
		return usecase.Payment{}, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(y.shopID, y.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := y.http.Do(req)
	if err != nil {
		return usecase.Payment{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.Payment{}, fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var p paymentBody
		if err := json.Unmarshal(raw, &p); err != nil {
			return usecase.Payment{}, fmt.Errorf("%w: decode response: %v", domain.ErrGatewayUnavailable, err)
		}
		out := usecase.Payment{
			ID:        p.ID,
			Status:    p.Status,
			Paid:      p.Paid,
			AmountKop: valueToKopecks(p.Amount.Value),
			Currency:  p.Amount.Currency,
		}
		if p.Confirmation != nil {
			out.ConfirmationURL = p.Confirmation.ConfirmationURL
		}
		return out, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return usecase.Payment{}, fmt.Errorf("%w: %s (%s)", domain.ErrGatewayRejected, apiErr.Description, apiErr.Code)

	default:
		return usecase.Payment{}, fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
}

var _ usecase.PaymentGateway = (*YooKassa)(nil)
