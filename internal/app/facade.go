package app

import (
	"context"
	"time"

	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/usecase"
)

// StoreFacade aggregates the use cases behind a single surface consumed by
// the HTTP handlers and the background verifier.
type StoreFacade struct {
	auth           *usecase.AuthUseCase
	catalog        *usecase.CatalogUseCase
	orders         *usecase.OrderUseCase
	reconciliation *usecase.ReconciliationUseCase
}

// NewStoreFacade constructs StoreFacade.
func NewStoreFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	orders *usecase.OrderUseCase,
	reconciliation *usecase.ReconciliationUseCase,
) *StoreFacade {
	return &StoreFacade{
		auth:           auth,
		catalog:        catalog,
		orders:         orders,
		reconciliation: reconciliation,
	}
}

func (f *StoreFacade) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	return f.auth.Register(ctx, name, email, password)
}

func (f *StoreFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *StoreFacade) ParseToken(token string) (pkgAuth.Identity, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *StoreFacade) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	return f.catalog.Create(ctx, product)
}

func (f *StoreFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Get(ctx, id)
}

func (f *StoreFacade) Products(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	return f.catalog.List(ctx, filter)
}

func (f *StoreFacade) UpdateProduct(ctx context.Context, product *model.Product) error {
	return f.catalog.Update(ctx, product)
}

func (f *StoreFacade) DeleteProduct(ctx context.Context, id int64) error {
	return f.catalog.Delete(ctx, id)
}

func (f *StoreFacade) Checkout(ctx context.Context, userID int64, items []usecase.CheckoutItem, shipping model.ShippingInfo, shippingCost int64) (*model.Order, error) {
	return f.orders.Checkout(ctx, userID, items, shipping, shippingCost)
}

func (f *StoreFacade) Order(ctx context.Context, orderID int64, identity pkgAuth.Identity) (*model.Order, error) {
	return f.orders.GetForIdentity(ctx, orderID, identity)
}

func (f *StoreFacade) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StoreFacade) Orders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	return f.orders.ListAll(ctx, filter)
}

func (f *StoreFacade) ApproveOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.reconciliation.ApproveOrder(ctx, orderID)
}

func (f *StoreFacade) ShipOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.reconciliation.Ship(ctx, orderID)
}

func (f *StoreFacade) DeliverOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.reconciliation.Deliver(ctx, orderID)
}

func (f *StoreFacade) InitializeCharge(ctx context.Context, identity pkgAuth.Identity, orderID int64) (*model.ChargeInit, error) {
	return f.reconciliation.InitializeCharge(ctx, identity, orderID)
}

func (f *StoreFacade) SettleWebhook(ctx context.Context, body []byte, signature, event string, result model.ChargeResult) error {
	return f.reconciliation.SettleWebhook(ctx, body, signature, event, result)
}

func (f *StoreFacade) SubmitProof(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error) {
	return f.reconciliation.SubmitProof(ctx, req)
}

func (f *StoreFacade) Proofs(ctx context.Context) ([]model.PaymentProof, error) {
	return f.reconciliation.ListProofs(ctx)
}

func (f *StoreFacade) ReviewProof(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (*model.PaymentProof, error) {
	return f.reconciliation.ReviewProof(ctx, proofID, outcome)
}

func (f *StoreFacade) UnsettledOrders(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error) {
	return f.reconciliation.UnsettledOrders(ctx, olderThan, limit)
}

func (f *StoreFacade) VerifyReference(ctx context.Context, reference string) error {
	return f.reconciliation.VerifyReference(ctx, reference)
}
