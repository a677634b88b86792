package repository

import (
	"context"
	"time"

	"github.com/ngmstore/storefront/internal/domain/model"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID       *int64
	PaymentState *model.PaymentState
}

// OrderRepository describes persistence operations with orders. All state
// transitions are single conditional updates: the applied result reports
// whether this call won the transition, a false result with nil error means
// the order was already at (or past) the requested state.
type OrderRepository interface {
	Create(ctx context.Context, userID int64, items []model.LineItem, shipping model.ShippingInfo, itemsSubtotal, shippingCost int64) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByGatewayReference(ctx context.Context, reference string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)

	SetGatewayReference(ctx context.Context, orderID int64, reference string) error
	MarkPaid(ctx context.Context, orderID int64, evidence model.PaymentEvidence) (bool, error)
	MarkPendingReview(ctx context.Context, orderID int64, proofImage string) (bool, error)
	MarkFailed(ctx context.Context, orderID int64) (bool, error)
	AdvanceFulfillment(ctx context.Context, orderID int64, target model.FulfillmentState) (bool, error)

	ClaimPaymentNotification(ctx context.Context, orderID int64) (bool, error)
	ClaimDeliveryNotification(ctx context.Context, orderID int64) (bool, error)

	SelectUnsettledBatch(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error)
}
