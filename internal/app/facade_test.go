package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/server/http/handlers"
	testhelpers "github.com/ngmstore/storefront/internal/test"
	"github.com/ngmstore/storefront/internal/usecase"
)

var _ handlers.StoreFacade = (*StoreFacade)(nil)

func newTestFacade(t *testing.T) (*StoreFacade, *testhelpers.OrderRepositoryMem) {
	t.Helper()
	users := testhelpers.NewUserRepositoryStub()
	products := testhelpers.NewProductRepositoryStub()
	orders := testhelpers.NewOrderRepositoryMem()
	proofs := testhelpers.NewProofRepositoryMem()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	facade := NewStoreFacade(
		usecase.NewAuthUseCase(users, testhelpers.HasherStub{}, testhelpers.StrategyStub{}),
		usecase.NewCatalogUseCase(products),
		usecase.NewOrderUseCase(orders, products),
		usecase.NewReconciliationUseCase(orders, proofs, products, users, &testhelpers.GatewayStub{}, &testhelpers.SinkRecorder{}, logger),
	)
	return facade, orders
}

func TestFacadeDelegation(t *testing.T) {
	facade, orders := newTestFacade(t)
	ctx := context.Background()

	usr, token, err := facade.Register(ctx, "Ada", "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if usr.ID == 0 || token == "" {
		t.Fatalf("incomplete registration result: %+v token=%q", usr, token)
	}

	product, err := facade.CreateProduct(ctx, &model.Product{Name: "Phone", Price: 1000})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := facade.Checkout(ctx, usr.ID,
		[]usecase.CheckoutItem{{ProductID: product.ID, Quantity: 2}},
		model.ShippingInfo{Name: "Ada", Phone: "1", Address: "a", Country: "NG"}, 100)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.GrandTotal != 2100 {
		t.Fatalf("expected grand total 2100, got %d", order.GrandTotal)
	}

	approved, err := facade.ApproveOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.PaymentState != model.PaymentStatePaid {
		t.Fatalf("expected PAID, got %s", approved.PaymentState)
	}

	stored, err := orders.GetByID(ctx, order.ID)
	if err != nil || stored.PaymentState != model.PaymentStatePaid {
		t.Fatalf("settlement not persisted: %+v err=%v", stored, err)
	}
}
