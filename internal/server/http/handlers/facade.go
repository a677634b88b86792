package handlers

import (
	"context"

	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(token string) (pkgAuth.Identity, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
}

// CatalogFacade encapsulates catalog operations exposed via HTTP.
type CatalogFacade interface {
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	Products(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Checkout(ctx context.Context, userID int64, items []usecase.CheckoutItem, shipping model.ShippingInfo, shippingCost int64) (*model.Order, error)
	Order(ctx context.Context, orderID int64, identity pkgAuth.Identity) (*model.Order, error)
	MyOrders(ctx context.Context, userID int64) ([]model.Order, error)
	Orders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error)
	ApproveOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ShipOrder(ctx context.Context, orderID int64) (*model.Order, error)
	DeliverOrder(ctx context.Context, orderID int64) (*model.Order, error)
}

// PaymentFacade encapsulates settlement operations exposed via HTTP.
type PaymentFacade interface {
	InitializeCharge(ctx context.Context, identity pkgAuth.Identity, orderID int64) (*model.ChargeInit, error)
	SettleWebhook(ctx context.Context, body []byte, signature, event string, result model.ChargeResult) error
	SubmitProof(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error)
	Proofs(ctx context.Context) ([]model.PaymentProof, error)
	ReviewProof(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (*model.PaymentProof, error)
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
	PaymentFacade
}
