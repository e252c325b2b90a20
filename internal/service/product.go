package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/domain"
)

// newCollectionSize is how many of the newest products the storefront
// shows in its "new collections" strip.
const newCollectionSize = 8

// ProductStore is the persistence surface the product service needs.
type ProductStore interface {
	CreateProduct(ctx context.Context, params domain.CreateProductParams) (domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListNewestProducts(ctx context.Context, n int32) ([]domain.Product, error)
	ListPopularProducts(ctx context.Context) ([]domain.Product, error)
	TogglePopular(ctx context.Context, id int64) (bool, error)
	UpdateProduct(ctx context.Context, id int64, params domain.UpdateProductParams) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductService manages the catalog.
type ProductService struct {
	store  ProductStore
	logger zerolog.Logger
}

// NewProductService creates a catalog service.
func NewProductService(store ProductStore, logger zerolog.Logger) *ProductService {
	return &ProductService{
		store:  store,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, params domain.CreateProductParams) (domain.Product, error) {
	if params.Name == "" {
		return domain.Product{}, domain.Errorf(domain.EINVALID, "product.create", "Product name is required")
	}
	if params.PricePaise <= 0 {
		return domain.Product{}, ErrInvalidPrice
	}

	p, err := s.store.CreateProduct(ctx, params)
	if err != nil {
		return domain.Product{}, domain.Internal(err, "product.create", "failed to create product")
	}

	s.logger.Info().Int64("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, domain.Internal(err, "product.get", "failed to load product")
	}
	return p, nil
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, "product.list", "failed to list products")
	}
	return products, nil
}

// NewCollections returns the most recently added products, newest
// first.
func (s *ProductService) NewCollections(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListNewestProducts(ctx, newCollectionSize)
	if err != nil {
		return nil, domain.Internal(err, "product.new_collections", "failed to list newest products")
	}
	return products, nil
}

// Popular returns products flagged popular.
func (s *ProductService) Popular(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListPopularProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, "product.popular", "failed to list popular products")
	}
	return products, nil
}

// TogglePopular flips a product's popular flag and returns the new
// value.
func (s *ProductService) TogglePopular(ctx context.Context, id int64) (bool, error) {
	popular, err := s.store.TogglePopular(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrProductNotFound
	}
	if err != nil {
		return false, domain.Internal(err, "product.toggle_popular", "failed to toggle popular flag")
	}
	return popular, nil
}

// Update applies a partial update and returns the updated product.
func (s *ProductService) Update(ctx context.Context, id int64, params domain.UpdateProductParams) (domain.Product, error) {
	if params.PricePaise != nil && *params.PricePaise <= 0 {
		return domain.Product{}, ErrInvalidPrice
	}

	p, err := s.store.UpdateProduct(ctx, id, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, domain.Internal(err, "product.update", "failed to update product")
	}
	return p, nil
}

// Delete removes a product from the catalog. Existing cart lines for
// the product are dropped by the store's foreign key cascade; order
// history keeps its price snapshots.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteProduct(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return domain.Internal(err, "product.delete", "failed to delete product")
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}
