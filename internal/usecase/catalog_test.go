package usecase_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
	testhelpers "github.com/ngmstore/storefront/internal/test"
	. "github.com/ngmstore/storefront/internal/usecase"
)

func TestCatalogValidation(t *testing.T) {
	uc := NewCatalogUseCase(testhelpers.NewProductRepositoryStub())
	ctx := context.Background()

	cases := []model.Product{
		{Name: " ", Price: 100},
		{Name: "Phone", Price: -1},
		{Name: "Phone", Price: 100, CountInStock: -3},
	}
	for i, p := range cases {
		if _, err := uc.Create(ctx, &p); !errors.Is(err, domainErrors.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
		if err := uc.Update(ctx, &p); !errors.Is(err, domainErrors.ErrValidation) {
			t.Fatalf("case %d: update expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCatalogListPagingDefaults(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub()
	for i := 0; i < 3; i++ {
		products.Add(model.Product{Name: "Item", Price: 100})
	}
	uc := NewCatalogUseCase(products)

	list, total, err := uc.List(context.Background(), repository.ProductFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("expected 3 products, got %d of %d", len(list), total)
	}
}

func TestCatalogKeywordFilter(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub()
	products.Add(model.Product{Name: "Galaxy Phone", Category: "phones", Price: 100})
	products.Add(model.Product{Name: "Desk Lamp", Category: "home", Price: 50})
	uc := NewCatalogUseCase(products)

	list, total, err := uc.List(context.Background(), repository.ProductFilter{Keyword: "galaxy"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Name != "Galaxy Phone" {
		t.Fatalf("keyword filter mismatch: %+v", list)
	}
}
