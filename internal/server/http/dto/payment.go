package dto

import "time"

// InitializeRequest names the order to start a gateway charge for. Amount
// and email come from the stored order.
type InitializeRequest struct {
	OrderID int64 `json:"order_id"`
}

// InitializeResponse carries the hosted payment page details.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// WebhookEvent is the gateway's webhook envelope. Only charge events are
// acted on.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string     `json:"reference"`
		Status    string     `json:"status"`
		Channel   string     `json:"channel"`
		PaidAt    *time.Time `json:"paid_at"`
	} `json:"data"`
}
