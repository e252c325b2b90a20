package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/billing"
	"github.com/tkarlsen/bodega/internal/currency"
	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// CheckoutStore is the persistence surface the checkout service needs.
type CheckoutStore interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetCart(ctx context.Context, userID int64) (domain.Cart, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateCheckoutAttempt(ctx context.Context, sessionID string, userID, amountCents int64) error
	GetCheckoutAttempt(ctx context.Context, sessionID string) (domain.CheckoutAttempt, error)
}

// providerTimeout bounds each outbound call to the payment provider.
const providerTimeout = 15 * time.Second

// CheckoutService turns a cart into a hosted payment session. Prices
// are quoted in INR and charged in USD.
type CheckoutService struct {
	store    CheckoutStore
	provider billing.Provider
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(store CheckoutStore, provider billing.Provider, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		provider: provider,
		metrics:  metrics,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// CheckoutResult is returned when a payment session is created.
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// CheckoutStatus describes a payment session as the provider sees it.
type CheckoutStatus struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	AttemptStatus string `json:"attempt_status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

// Start creates a payment session for the user's current cart.
// Requires a shipping address on file and a non-empty cart. Each line
// is converted from INR paise to USD cents at the fixed charge rate.
func (s *CheckoutService) Start(ctx context.Context, userID int64) (*CheckoutResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "checkout.start", "failed to load user")
	}
	if !user.HasAddress() {
		return nil, ErrAddressRequired
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, "checkout.start", "failed to load cart")
	}
	if cart.TotalItems() == 0 {
		return nil, ErrEmptyCart
	}

	lineItems, total, err := s.buildLineItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()
	sess, err := s.provider.CreateCheckoutSession(callCtx, billing.CreateSessionParams{
		Currency:      "usd",
		LineItems:     lineItems,
		CustomerEmail: user.Email,
		Metadata: map[string]string{
			"user_id": strconv.FormatInt(userID, 10),
		},
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		if errors.Is(err, billing.ErrAmountTooSmall) {
			return nil, domain.Errorf(domain.EINVALID, "checkout.start", "Cart total is below the minimum charge")
		}
		return nil, &domain.Error{
			Code:    domain.EPAYMENT,
			Message: "Unable to start payment session",
			Op:      "checkout.start",
			Err:     err,
		}
	}

	if err := s.store.CreateCheckoutAttempt(ctx, sess.ID, userID, total); err != nil {
		return nil, domain.Internal(err, "checkout.start", "failed to record checkout attempt")
	}

	s.metrics.CheckoutStarted.WithLabelValues("usd").Inc()
	s.logger.Info().
		Int64("user_id", userID).
		Str("session_id", sess.ID).
		Int64("amount_cents", total).
		Msg("checkout session created")

	return &CheckoutResult{
		SessionID:   sess.ID,
		URL:         sess.URL,
		AmountCents: total,
		Currency:    "usd",
	}, nil
}

// Estimate returns the approximate USD total for the user's cart,
// formatted with two decimals. Display only; the charged amount uses
// the exact rate.
func (s *CheckoutService) Estimate(ctx context.Context, userID int64) (string, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return "", domain.Internal(err, "checkout.estimate", "failed to load cart")
	}

	var totalPaise int64
	for productID, qty := range cart {
		p, err := s.store.GetProduct(ctx, productID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", domain.Internal(err, "checkout.estimate", "failed to load product")
		}
		totalPaise += p.PricePaise * int64(qty)
	}
	return currency.EstimateUSD(float64(totalPaise) / 100), nil
}

// SessionStatus reports where a payment session stands, for the page
// the customer lands on after paying. The session must belong to the
// calling user; order creation stays webhook-driven regardless of
// what this reports.
func (s *CheckoutService) SessionStatus(ctx context.Context, userID int64, sessionID string) (*CheckoutStatus, error) {
	attempt, err := s.store.GetCheckoutAttempt(ctx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnknownAttempt
	}
	if err != nil {
		return nil, domain.Internal(err, "checkout.status", "failed to load checkout attempt")
	}
	if attempt.UserID != userID {
		return nil, ErrUnknownAttempt
	}

	callCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()
	sess, err := s.provider.GetCheckoutSession(callCtx, sessionID)
	if err != nil {
		if errors.Is(err, billing.ErrSessionNotFound) {
			return nil, ErrUnknownAttempt
		}
		return nil, &domain.Error{
			Code:    domain.EPAYMENT,
			Message: "Unable to check payment status",
			Op:      "checkout.status",
			Err:     err,
		}
	}

	return &CheckoutStatus{
		SessionID:     sessionID,
		PaymentStatus: sess.PaymentStatus,
		AttemptStatus: attempt.Status,
		AmountCents:   attempt.AmountCents,
		Currency:      "usd",
	}, nil
}

// buildLineItems converts each cart line to a USD-priced billing line.
// Lines are ordered by product id so session contents are stable
// across retries.
func (s *CheckoutService) buildLineItems(ctx context.Context, cart domain.Cart) ([]billing.LineItem, int64, error) {
	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var items []billing.LineItem
	var total int64
	for _, id := range ids {
		qty := cart[id]
		if qty <= 0 {
			continue
		}
		p, err := s.store.GetProduct(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			// Product removed from the catalog after it was carted.
			continue
		}
		if err != nil {
			return nil, 0, domain.Internal(err, "checkout.start", "failed to load product")
		}
		unitCents := currency.ConvertINRToUSDCents(p.PricePaise)
		items = append(items, billing.LineItem{
			Name:            p.Name,
			UnitAmountCents: unitCents,
			Quantity:        int64(qty),
		})
		total += unitCents * int64(qty)
	}
	if len(items) == 0 {
		return nil, 0, ErrEmptyCart
	}
	return items, total, nil
}
