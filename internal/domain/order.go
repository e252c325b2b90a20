package domain

import "time"

// Order is an immutable record of a completed purchase. Line items
// snapshot the price at order time; later catalog changes never
// affect historical orders. CheckoutSessionID ties the order to
// exactly one payment session and is the idempotency key for
// finalization.
type Order struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id"`
	CheckoutSessionID string      `json:"checkout_session_id"`
	AmountCents       int64       `json:"amount_cents"`
	Currency          string      `json:"currency"`
	PlacedAt          time.Time   `json:"placed_at"`
	Items             []OrderItem `json:"items"`
}

// OrderItem is one line of an order with the product name and unit
// price captured at order time.
type OrderItem struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	Quantity       int32  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
}

// CheckoutAttempt records one payment session issued to a user.
// Exactly one order may ever result from an attempt.
type CheckoutAttempt struct {
	SessionID   string    `json:"session_id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"` // pending, completed, failed
	CreatedAt   time.Time `json:"created_at"`
}

// Checkout attempt statuses.
const (
	AttemptPending   = "pending"
	AttemptCompleted = "completed"
	AttemptFailed    = "failed"
)
