package usecase

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
)

// CheckoutItem is one requested catalog entry at checkout. Name and price are
// never taken from the caller; they are snapshotted from the catalog.
type CheckoutItem struct {
	ProductID int64
	Quantity  int32
}

// OrderUseCase encapsulates order creation and lookup.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, products repository.ProductRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, products: products}
}

// Checkout validates the cart, snapshots catalog prices and records a new
// UNPAID order. Totals are computed here, never accepted from the caller.
func (u *OrderUseCase) Checkout(ctx context.Context, userID int64, items []CheckoutItem, shipping model.ShippingInfo, shippingCost int64) (*model.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domainErrors.ErrValidation)
	}
	if shippingCost < 0 {
		return nil, fmt.Errorf("%w: shipping cost must not be negative", domainErrors.ErrValidation)
	}
	if err := validateShipping(shipping); err != nil {
		return nil, err
	}

	lines := make([]model.LineItem, 0, len(items))
	var subtotal int64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item quantity must be at least 1", domainErrors.ErrValidation)
		}
		product, err := u.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, err)
		}
		lines = append(lines, model.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		subtotal += product.Price * int64(item.Quantity)
	}

	return u.orders.Create(ctx, userID, lines, shipping, subtotal, shippingCost)
}

// GetForIdentity fetches an order, allowing only its owner or an admin.
func (u *OrderUseCase) GetForIdentity(ctx context.Context, orderID int64, identity pkgAuth.Identity) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID && !identity.IsAdmin {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// ListByUser returns the caller's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.List(ctx, repository.OrderFilter{UserID: &userID})
}

// ListAll returns every order, optionally narrowed by payment state.
func (u *OrderUseCase) ListAll(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	return u.orders.List(ctx, filter)
}

func validateShipping(shipping model.ShippingInfo) error {
	for field, value := range map[string]string{
		"name":    shipping.Name,
		"phone":   shipping.Phone,
		"address": shipping.Address,
		"country": shipping.Country,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: shipping %s is required", domainErrors.ErrValidation, field)
		}
	}
	return nil
}
