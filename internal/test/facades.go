package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	pkgAuth "github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (*model.User, string, error)
	AuthenticateFn func(context.Context, string, string) (*model.User, string, error)
	ParseFn        func(string) (pkgAuth.Identity, error)
	UserByIDFn     func(context.Context, int64) (*model.User, error)
}

func (s AuthFacadeStub) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, name, email, password)
	}
	return &model.User{ID: 1, Name: name, Email: email}, "token", nil
}

func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return &model.User{ID: 1, Email: email}, "token", nil
}

func (s AuthFacadeStub) ParseToken(token string) (pkgAuth.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Identity{UserID: 1}, nil
}

func (s AuthFacadeStub) UserByID(ctx context.Context, id int64) (*model.User, error) {
	if s.UserByIDFn != nil {
		return s.UserByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "user", Email: "user@example.com"}, nil
}

// CatalogFacadeStub simulates catalog facade interactions.
type CatalogFacadeStub struct {
	CreateFn func(context.Context, *model.Product) (*model.Product, error)
	GetFn    func(context.Context, int64) (*model.Product, error)
	ListFn   func(context.Context, repository.ProductFilter) ([]model.Product, int, error)
	UpdateFn func(context.Context, *model.Product) error
	DeleteFn func(context.Context, int64) error
}

func (s CatalogFacadeStub) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, product)
	}
	created := *product
	created.ID = 1
	return &created, nil
}

func (s CatalogFacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "product", Price: 1000}, nil
}

func (s CatalogFacadeStub) Products(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	return []model.Product{{ID: 1, Name: "product", Price: 1000}}, 1, nil
}

func (s CatalogFacadeStub) UpdateProduct(ctx context.Context, product *model.Product) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, product)
	}
	return nil
}

func (s CatalogFacadeStub) DeleteProduct(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CheckoutFn func(context.Context, int64, []usecase.CheckoutItem, model.ShippingInfo, int64) (*model.Order, error)
	OrderFn    func(context.Context, int64, pkgAuth.Identity) (*model.Order, error)
	MyOrdersFn func(context.Context, int64) ([]model.Order, error)
	OrdersFn   func(context.Context, repository.OrderFilter) ([]model.Order, error)
	ApproveFn  func(context.Context, int64) (*model.Order, error)
	ShipFn     func(context.Context, int64) (*model.Order, error)
	DeliverFn  func(context.Context, int64) (*model.Order, error)
}

func (s OrderFacadeStub) Checkout(ctx context.Context, userID int64, items []usecase.CheckoutItem, shipping model.ShippingInfo, shippingCost int64) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, userID, items, shipping, shippingCost)
	}
	return &model.Order{ID: 1, UserID: userID, PaymentState: model.PaymentStateUnpaid}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, orderID int64, identity pkgAuth.Identity) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, identity)
	}
	return &model.Order{ID: orderID, UserID: identity.UserID}, nil
}

func (s OrderFacadeStub) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.MyOrdersFn != nil {
		return s.MyOrdersFn(ctx, userID)
	}
	return []model.Order{{ID: 1, UserID: userID}}, nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return []model.Order{{ID: 1}}, nil
}

func (s OrderFacadeStub) ApproveOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, PaymentState: model.PaymentStatePaid}, nil
}

func (s OrderFacadeStub) ShipOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.ShipFn != nil {
		return s.ShipFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, FulfillmentState: model.FulfillmentStateShipped}, nil
}

func (s OrderFacadeStub) DeliverOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, FulfillmentState: model.FulfillmentStateDelivered}, nil
}

// PaymentFacadeStub simulates settlement operations for handler tests.
type PaymentFacadeStub struct {
	InitializeFn    func(context.Context, pkgAuth.Identity, int64) (*model.ChargeInit, error)
	SettleWebhookFn func(context.Context, []byte, string, string, model.ChargeResult) error
	SubmitProofFn   func(context.Context, usecase.ProofRequest) (*model.PaymentProof, error)
	ProofsFn        func(context.Context) ([]model.PaymentProof, error)
	ReviewProofFn   func(context.Context, int64, model.ReviewOutcome) (*model.PaymentProof, error)
}

func (s PaymentFacadeStub) InitializeCharge(ctx context.Context, identity pkgAuth.Identity, orderID int64) (*model.ChargeInit, error) {
	if s.InitializeFn != nil {
		return s.InitializeFn(ctx, identity, orderID)
	}
	return &model.ChargeInit{AuthorizationURL: "https://checkout.example/ref", Reference: "ref"}, nil
}

func (s PaymentFacadeStub) SettleWebhook(ctx context.Context, body []byte, signature, event string, result model.ChargeResult) error {
	if s.SettleWebhookFn != nil {
		return s.SettleWebhookFn(ctx, body, signature, event, result)
	}
	return nil
}

func (s PaymentFacadeStub) SubmitProof(ctx context.Context, req usecase.ProofRequest) (*model.PaymentProof, error) {
	if s.SubmitProofFn != nil {
		return s.SubmitProofFn(ctx, req)
	}
	return &model.PaymentProof{ID: 1, Name: req.Name, Email: req.Email, Image: req.Image, ReviewOutcome: model.ReviewOutcomePending}, nil
}

func (s PaymentFacadeStub) Proofs(ctx context.Context) ([]model.PaymentProof, error) {
	if s.ProofsFn != nil {
		return s.ProofsFn(ctx)
	}
	return []model.PaymentProof{{ID: 1, Name: "buyer"}}, nil
}

func (s PaymentFacadeStub) ReviewProof(ctx context.Context, proofID int64, outcome model.ReviewOutcome) (*model.PaymentProof, error) {
	if s.ReviewProofFn != nil {
		return s.ReviewProofFn(ctx, proofID, outcome)
	}
	return &model.PaymentProof{ID: proofID, ReviewOutcome: outcome}, nil
}

// StoreFacadeStub aggregates facade dependencies for HTTP layer tests.
type StoreFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
}

// VerifyCall records one verification request seen by the worker facade.
type VerifyCall struct {
	Reference string
}

// WorkerFacadeStub mimics verifier interactions with the store facade.
type WorkerFacadeStub struct {
	Batches  [][]model.Order
	OrdersFn func(context.Context, time.Duration, int) ([]model.Order, error)
	VerifyFn func(context.Context, string) error

	mu             sync.Mutex
	Verified       []VerifyCall
	batchCallCount int32
}

// UnsettledOrders returns batches from the configured queue.
func (s *WorkerFacadeStub) UnsettledOrders(ctx context.Context, olderThan time.Duration, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, olderThan, limit)
	}
	call := atomic.AddInt32(&s.batchCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// VerifyReference records verification requests.
func (s *WorkerFacadeStub) VerifyReference(ctx context.Context, reference string) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, reference)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Verified = append(s.Verified, VerifyCall{Reference: reference})
	return nil
}

// VerifiedCount reports how many references were verified so far.
func (s *WorkerFacadeStub) VerifiedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Verified)
}
