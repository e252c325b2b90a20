package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/billing"
	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/events"
	"github.com/tkarlsen/bodega/internal/repository"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// OrderStore is the persistence surface the order service needs.
type OrderStore interface {
	FinalizeOrder(ctx context.Context, params repository.FinalizeOrderParams) (domain.Order, bool, error)
	GetCheckoutAttempt(ctx context.Context, sessionID string) (domain.CheckoutAttempt, error)
	SetCheckoutAttemptStatus(ctx context.Context, sessionID, status string) error
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// OrderService finalizes paid checkout sessions into orders. Orders
// are created only from verified payment events, never from a client
// redirect.
type OrderService struct {
	store     OrderStore
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(store OrderStore, publisher events.Publisher, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// HandleCheckoutCompleted turns a paid session into an order. Safe to
// call any number of times for the same session: replays return the
// order created by the first call and change nothing.
func (s *OrderService) HandleCheckoutCompleted(ctx context.Context, sess *billing.CheckoutSession) (domain.Order, error) {
	if sess.PaymentStatus != "paid" && sess.PaymentStatus != "no_payment_required" {
		return domain.Order{}, ErrPaymentNotSucceeded
	}

	userID, err := userIDFromMetadata(sess.Metadata)
	if err != nil {
		return domain.Order{}, err
	}

	if _, err := s.store.GetCheckoutAttempt(ctx, sess.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, ErrUnknownAttempt
		}
		return domain.Order{}, domain.Internal(err, "order.finalize", "failed to load checkout attempt")
	}

	order, created, err := s.store.FinalizeOrder(ctx, repository.FinalizeOrderParams{
		UserID:      userID,
		SessionID:   sess.ID,
		AmountCents: sess.AmountTotalCents,
		Currency:    sess.Currency,
	})
	if err != nil {
		return domain.Order{}, domain.Internal(err, "order.finalize", "failed to finalize order")
	}

	if !created {
		s.logger.Info().
			Str("session_id", sess.ID).
			Int64("order_id", order.ID).
			Msg("duplicate completion event, order already finalized")
		return order, nil
	}

	s.metrics.OrdersCreated.Inc()
	s.metrics.OrderValue.Observe(float64(order.AmountCents))
	s.metrics.OrderItemCount.Observe(float64(len(order.Items)))
	s.metrics.PaymentSucceeded.WithLabelValues(order.Currency).Inc()

	s.publisher.Publish(events.SubjectOrderPlaced, events.OrderPlaced{
		OrderID:           order.ID,
		UserID:            order.UserID,
		CheckoutSessionID: order.CheckoutSessionID,
		AmountCents:       order.AmountCents,
		Currency:          order.Currency,
		PlacedAt:          order.PlacedAt,
	})

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("user_id", order.UserID).
		Str("session_id", sess.ID).
		Int64("amount_cents", order.AmountCents).
		Msg("order placed")

	return order, nil
}

// HandleCheckoutExpired marks an abandoned session failed. The cart is
// left untouched so the customer can try again.
func (s *OrderService) HandleCheckoutExpired(ctx context.Context, sess *billing.CheckoutSession) error {
	attempt, err := s.store.GetCheckoutAttempt(ctx, sess.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnknownAttempt
	}
	if err != nil {
		return domain.Internal(err, "order.expire", "failed to load checkout attempt")
	}
	if attempt.Status != domain.AttemptPending {
		return nil
	}

	if err := s.store.SetCheckoutAttemptStatus(ctx, sess.ID, domain.AttemptFailed); err != nil {
		return domain.Internal(err, "order.expire", "failed to update checkout attempt")
	}

	s.metrics.PaymentFailed.WithLabelValues("expired").Inc()
	s.publisher.Publish(events.SubjectPaymentFailed, events.PaymentFailed{
		CheckoutSessionID: sess.ID,
		UserID:            attempt.UserID,
		Reason:            "expired",
	})
	return nil
}

// ListForUser returns the user's order history, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

func userIDFromMetadata(metadata map[string]string) (int64, error) {
	raw, ok := metadata["user_id"]
	if !ok {
		return 0, ErrMissingUserID
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrMissingUserID
	}
	return userID, nil
}
