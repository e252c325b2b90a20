package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates successful checkout flows without calling Stripe.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing session retrieval behavior
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// ConstructWebhookEventFunc allows customizing webhook parsing behavior
	ConstructWebhookEventFunc func(payload []byte, signature string) (*WebhookEvent, error)

	// Sessions stores created sessions for retrieval
	Sessions map[string]*CheckoutSession

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*CheckoutSession),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	var total int64
	for _, li := range params.LineItems {
		total += li.UnitAmountCents * li.Quantity
	}
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d, %s)", total, params.Currency))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	sess := &CheckoutSession{
		ID:               "cs_test_" + uuid.New().String(),
		URL:              "https://checkout.example.com/pay/" + uuid.New().String(),
		AmountTotalCents: total,
		Currency:         params.Currency,
		PaymentStatus:    "unpaid",
		Metadata:         params.Metadata,
		CreatedAt:        time.Now(),
	}
	m.Sessions[sess.ID] = sess
	return sess, nil
}

// GetCheckoutSession retrieves a stored mock session.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCheckoutSession(%s)", sessionID))

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	sess, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ConstructWebhookEvent accepts any payload without signature checks.
func (m *MockProvider) ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	m.CallLog = append(m.CallLog, "ConstructWebhookEvent")

	if m.ConstructWebhookEventFunc != nil {
		return m.ConstructWebhookEventFunc(payload, signature)
	}
	return &WebhookEvent{Type: EventCheckoutCompleted}, nil
}

// MarkPaid flips a stored session to paid, simulating a completed payment.
func (m *MockProvider) MarkPaid(sessionID string) (*CheckoutSession, bool) {
	sess, exists := m.Sessions[sessionID]
	if !exists {
		return nil, false
	}
	sess.PaymentStatus = "paid"
	return sess, true
}
