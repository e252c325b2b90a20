// Package events publishes domain events to NATS for downstream
// consumers (fulfillment, email, analytics). Publishing is
// best-effort: a failed publish is logged, never surfaced to the
// customer.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the storefront.
const (
	SubjectOrderPlaced   = "bodega.order.placed"
	SubjectPaymentFailed = "bodega.payment.failed"
	SubjectUserSignedUp  = "bodega.user.signed_up"

	// SubjectAll matches every storefront subject.
	SubjectAll = "bodega.>"
)

// OrderPlaced is published after an order is finalized.
type OrderPlaced struct {
	OrderID           int64     `json:"order_id"`
	UserID            int64     `json:"user_id"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	AmountCents       int64     `json:"amount_cents"`
	Currency          string    `json:"currency"`
	PlacedAt          time.Time `json:"placed_at"`
}

// PaymentFailed is published when a checkout session fails or expires.
type PaymentFailed struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	UserID            int64  `json:"user_id"`
	Reason            string `json:"reason"`
}

// UserSignedUp is published after account creation.
type UserSignedUp struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(subject string, event any)
}

// NATSPublisher publishes events to a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Connect dials NATS and returns a publisher over the connection.
func Connect(url string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) Publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("marshal event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("publish event")
	}
}

// Subscribe registers a handler for a subject. The subscription lives
// until the connection is drained.
func (p *NATSPublisher) Subscribe(subject string, fn func(subject string, data []byte)) error {
	_, err := p.conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(msg.Subject, msg.Data)
	})
	return err
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("drain nats connection")
	}
}

// NoopPublisher discards events. Used when NATS is not configured and
// in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, any) {}
