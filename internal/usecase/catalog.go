package usecase

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/ngmstore/storefront/internal/domain/errors"
	"github.com/ngmstore/storefront/internal/domain/model"
	"github.com/ngmstore/storefront/internal/domain/repository"
)

const defaultPageSize = 12

// CatalogUseCase encapsulates product catalog management.
type CatalogUseCase struct {
	products repository.ProductRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products}
}

// Create adds a catalog entry.
func (u *CatalogUseCase) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	return u.products.Create(ctx, product)
}

// Get fetches a single catalog entry.
func (u *CatalogUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// List returns a catalog page and the total match count.
func (u *CatalogUseCase) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	return u.products.List(ctx, filter)
}

// Update replaces a catalog entry.
func (u *CatalogUseCase) Update(ctx context.Context, product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return u.products.Update(ctx, product)
}

// Delete removes a catalog entry.
func (u *CatalogUseCase) Delete(ctx context.Context, id int64) error {
	return u.products.Delete(ctx, id)
}

func validateProduct(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name is required", domainErrors.ErrValidation)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: product price must not be negative", domainErrors.ErrValidation)
	}
	if product.CountInStock < 0 {
		return fmt.Errorf("%w: stock count must not be negative", domainErrors.ErrValidation)
	}
	return nil
}
