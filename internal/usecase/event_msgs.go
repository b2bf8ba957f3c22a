package usecase

import "time"

// NotificationTask is queued on the broker and executed by the notification
// worker. Channel selects the sink.
type NotificationTask struct {
	Channel        string `json:"channel"` // "email" | "telegram"
	Recipient      string `json:"recipient,omitempty"`
	TelegramChatID int64  `json:"telegramChatId,omitempty"`
	Event          string `json:"event"`
	OrderNumber    string `json:"orderNumber"`
	Status         string `json:"status"`
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body"`
}

// OrderEventMsg is published to the order events topic for downstream
// consumers (analytics and the like).
type OrderEventMsg struct {
	OrderNumber  string    `json:"orderNumber"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	NetAmountKop int64     `json:"netAmountKop"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// WebhookEvent is the provider notification payload we consume. Only the
// fields the orchestrator needs are decoded.
type WebhookEvent struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Paid   bool   `json:"paid"`
		Amount struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"amount"`
		Metadata struct {
			OrderNumber string `json:"order_number"`
		} `json:"metadata"`
	} `json:"object"`
}
