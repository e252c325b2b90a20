package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// CartStore is the persistence surface the cart service needs.
type CartStore interface {
	GetCart(ctx context.Context, userID int64) (domain.Cart, error)
	AddCartItem(ctx context.Context, userID, productID int64, qty int32) (bool, error)
	RemoveCartItem(ctx context.Context, userID, productID int64, qty int32) error
	ResetCart(ctx context.Context, userID int64) error
	MergeCartAndGet(ctx context.Context, userID int64, items domain.Cart) (domain.Cart, error)
}

// CartService manages per-user shopping carts.
type CartService struct {
	store   CartStore
	metrics *telemetry.BusinessMetrics
	logger  zerolog.Logger
}

// NewCartService creates a cart service.
func NewCartService(store CartStore, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *CartService {
	return &CartService{
		store:   store,
		metrics: metrics,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's cart. A user who never added anything gets an
// empty cart, not an error.
func (s *CartService) Get(ctx context.Context, userID int64) (domain.Cart, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart")
	}
	return cart, nil
}

// Add increments a cart line by qty.
func (s *CartService) Add(ctx context.Context, userID, productID int64, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	ok, err := s.store.AddCartItem(ctx, userID, productID, qty)
	if err != nil {
		return domain.Internal(err, "cart.add", "failed to add cart item")
	}
	if !ok {
		return ErrProductNotFound
	}

	s.metrics.CartItemsAdded.Inc()
	return nil
}

// Remove decrements a cart line by qty, clamping at zero. Removing
// from a line the user does not have is a no-op.
func (s *CartService) Remove(ctx context.Context, userID, productID int64, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if err := s.store.RemoveCartItem(ctx, userID, productID, qty); err != nil {
		return domain.Internal(err, "cart.remove", "failed to remove cart item")
	}

	s.metrics.CartItemsRemoved.Inc()
	return nil
}

// Reset empties the user's cart.
func (s *CartService) Reset(ctx context.Context, userID int64) error {
	if err := s.store.ResetCart(ctx, userID); err != nil {
		return domain.Internal(err, "cart.reset", "failed to reset cart")
	}

	s.metrics.CartsCleared.Inc()
	return nil
}

// Merge folds a guest cart into the user's stored cart in a single
// transaction and returns the merged result. Quantities for products
// present in both carts are summed; lines naming unknown products are
// dropped. Either the whole guest cart lands or none of it does.
func (s *CartService) Merge(ctx context.Context, userID int64, guest domain.Cart) (domain.Cart, error) {
	merged, err := s.store.MergeCartAndGet(ctx, userID, guest.NonZero())
	if err != nil {
		return nil, domain.Internal(err, "cart.merge", "failed to merge cart")
	}

	s.metrics.CartsMerged.Inc()
	s.logger.Info().Int64("user_id", userID).Int("guest_lines", len(guest)).Msg("guest cart merged")
	return merged, nil
}
