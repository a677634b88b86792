package repository

import (
	"context"

	"github.com/ngmstore/storefront/internal/domain/model"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
}

// ProductRepository describes persistence operations for catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id int64) error
}
