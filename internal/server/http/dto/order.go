package dto

import "time"

// CheckoutItemRequest names a catalog entry and quantity. Prices are never
// accepted from the client.
type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// ShippingRequest carries the destination recorded with the order.
type ShippingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Country string `json:"country"`
}

// CheckoutRequest describes the order creation payload.
type CheckoutRequest struct {
	Items        []CheckoutItemRequest `json:"items"`
	Shipping     ShippingRequest       `json:"shipping"`
	ShippingCost int64                 `json:"shipping_cost"`
}

// LineItemResponse is one snapshotted order line.
type LineItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderResponse is the full view of an order.
type OrderResponse struct {
	ID               int64              `json:"id"`
	UserID           int64              `json:"user_id"`
	Items            []LineItemResponse `json:"items"`
	Shipping         ShippingRequest    `json:"shipping"`
	ItemsSubtotal    int64              `json:"items_subtotal"`
	ShippingCost     int64              `json:"shipping_cost"`
	GrandTotal       int64              `json:"grand_total"`
	PaymentState     string             `json:"payment_state"`
	FulfillmentState string             `json:"fulfillment_state"`
	GatewayReference string             `json:"gateway_reference,omitempty"`
	GatewayChannel   string             `json:"gateway_channel,omitempty"`
	ProofImage       string             `json:"proof_image,omitempty"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
