package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// ProductCatalog is the remote product service. Implementations return
// only validated products.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}
