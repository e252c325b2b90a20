package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment session for a cart.
	// Returns the session URL the customer is redirected to.
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves an existing session by id.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ConstructWebhookEvent verifies a webhook payload's signature and
	// parses it into an event.
	ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// LineItem is one priced line of a checkout session.
type LineItem struct {
	// Name shown to the customer on the payment page
	Name string

	// UnitAmountCents is the per-unit price in smallest currency unit
	UnitAmountCents int64

	// Quantity of this line item
	Quantity int64
}

// CreateSessionParams contains parameters for creating a checkout session.
type CreateSessionParams struct {
	// Currency code (ISO 4217 lowercase) - e.g., "usd"
	Currency string

	// LineItems to charge for
	LineItems []LineItem

	// CustomerEmail prefills the email field on the payment page
	CustomerEmail string

	// Metadata for reporting and webhook correlation (always include user_id)
	Metadata map[string]string

	// IdempotencyKey prevents duplicate sessions on retried requests
	IdempotencyKey string
}

// CheckoutSession represents a hosted payment session.
type CheckoutSession struct {
	// ID is the provider session id (cs_...)
	ID string

	// URL is the hosted payment page the customer is redirected to
	URL string

	// AmountTotalCents is the total the customer is charged
	AmountTotalCents int64

	// Currency code
	Currency string

	// PaymentStatus: "paid", "unpaid", "no_payment_required"
	PaymentStatus string

	// Metadata passed during creation
	Metadata map[string]string

	// CreatedAt is when the session was created
	CreatedAt time.Time
}

// Webhook event types the order pipeline reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// WebhookEvent is a verified webhook notification.
type WebhookEvent struct {
	// Type is the provider event name, e.g. checkout.session.completed
	Type string

	// Session is populated for checkout session events
	Session *CheckoutSession
}
