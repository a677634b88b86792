package model

import "time"

// PaymentState describes how far an order has moved towards settlement.
type PaymentState string

const (
	PaymentStateUnpaid        PaymentState = "UNPAID"
	PaymentStatePendingReview PaymentState = "PENDING_REVIEW"
	PaymentStatePaid          PaymentState = "PAID"
	PaymentStateFailed        PaymentState = "FAILED"
)

// CanTransitionTo reports whether the payment state machine permits moving to
// target. The relation is forward-only: a PAID or FAILED order never changes
// payment state again.
func (s PaymentState) CanTransitionTo(target PaymentState) bool {
	switch s {
	case PaymentStateUnpaid:
		return target == PaymentStatePendingReview || target == PaymentStatePaid || target == PaymentStateFailed
	case PaymentStatePendingReview:
		return target == PaymentStatePaid || target == PaymentStateFailed
	default:
		return false
	}
}

// FulfillmentState describes physical order progress after payment.
type FulfillmentState string

const (
	FulfillmentStateProcessing FulfillmentState = "PROCESSING"
	FulfillmentStateShipped    FulfillmentState = "SHIPPED"
	FulfillmentStateDelivered  FulfillmentState = "DELIVERED"
)

// CanTransitionTo reports whether fulfillment may advance to target.
// Shipping may be skipped when an order is handed over directly.
func (s FulfillmentState) CanTransitionTo(target FulfillmentState) bool {
	switch s {
	case FulfillmentStateProcessing:
		return target == FulfillmentStateShipped || target == FulfillmentStateDelivered
	case FulfillmentStateShipped:
		return target == FulfillmentStateDelivered
	default:
		return false
	}
}

// LineItem is a snapshot of a purchased product at order-creation time.
// Name and unit price are copied from the catalog and never recomputed.
type LineItem struct {
	ProductID int64
	Name      string
	Quantity  int32
	UnitPrice int64
}

// ShippingInfo carries the destination recorded with the order. Immutable
// after creation.
type ShippingInfo struct {
	Name    string
	Phone   string
	Address string
	Country string
}

// PaymentEvidence records which settlement path confirmed an order. Exactly
// one path populates it: the gateway fields or the proof image.
type PaymentEvidence struct {
	GatewayReference string
	GatewayChannel   string
	ProofImage       string
	PaidAt           time.Time
}

// FromGateway reports whether the evidence came from the payment gateway.
func (e PaymentEvidence) FromGateway() bool {
	return e.GatewayReference != ""
}

// Order describes a purchase request and its payment/fulfillment lifecycle.
// Amounts are minor currency units; GrandTotal always equals
// ItemsSubtotal + ShippingCost.
type Order struct {
	ID               int64
	UserID           int64
	Items            []LineItem
	Shipping         ShippingInfo
	ItemsSubtotal    int64
	ShippingCost     int64
	GrandTotal       int64
	PaymentState     PaymentState
	FulfillmentState FulfillmentState
	GatewayReference string
	GatewayChannel   string
	ProofImage       string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
