package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarlsen/bodega/internal/billing"
	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/events"
	"github.com/tkarlsen/bodega/internal/repository"
	"github.com/tkarlsen/bodega/internal/service"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// promauto registers against the default registry; create once for
// the package.
var testMetrics = telemetry.NewBusinessMetrics("handlertest")

type stubOrderStore struct {
	attempts map[string]*domain.CheckoutAttempt
	orders   map[string]domain.Order
	nextID   int64
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{
		attempts: map[string]*domain.CheckoutAttempt{},
		orders:   map[string]domain.Order{},
		nextID:   1,
	}
}

func (s *stubOrderStore) FinalizeOrder(_ context.Context, params repository.FinalizeOrderParams) (domain.Order, bool, error) {
	if existing, ok := s.orders[params.SessionID]; ok {
		return existing, false, nil
	}
	order := domain.Order{
		ID:                s.nextID,
		UserID:            params.UserID,
		CheckoutSessionID: params.SessionID,
		AmountCents:       params.AmountCents,
		Currency:          params.Currency,
	}
	s.nextID++
	s.orders[params.SessionID] = order
	if a, ok := s.attempts[params.SessionID]; ok {
		a.Status = domain.AttemptCompleted
	}
	return order, true, nil
}

func (s *stubOrderStore) GetCheckoutAttempt(_ context.Context, sessionID string) (domain.CheckoutAttempt, error) {
	a, ok := s.attempts[sessionID]
	if !ok {
		return domain.CheckoutAttempt{}, errNoRows
	}
	return *a, nil
}

func (s *stubOrderStore) SetCheckoutAttemptStatus(_ context.Context, sessionID, status string) error {
	a, ok := s.attempts[sessionID]
	if !ok {
		return errNoRows
	}
	a.Status = status
	return nil
}

func (s *stubOrderStore) ListOrdersByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func webhookTestServer(store *stubOrderStore, provider billing.Provider) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	orders := service.NewOrderService(store, events.NoopPublisher{}, testMetrics, zerolog.Nop())
	NewWebhookHandler(provider, orders, testMetrics, zerolog.Nop()).RegisterRoutes(e)
	return e
}

func postWebhook(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", jsonBody(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.ConstructWebhookEventFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		return nil, billing.ErrInvalidWebhookSignature
	}
	e := webhookTestServer(newStubOrderStore(), provider)

	rec := postWebhook(e)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookCompletedCreatesOrderOnce(t *testing.T) {
	store := newStubOrderStore()
	store.attempts["cs_1"] = &domain.CheckoutAttempt{
		SessionID: "cs_1", UserID: 1, Status: domain.AttemptPending,
	}

	provider := billing.NewMockProvider()
	provider.ConstructWebhookEventFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{
			Type: billing.EventCheckoutCompleted,
			Session: &billing.CheckoutSession{
				ID:               "cs_1",
				PaymentStatus:    "paid",
				AmountTotalCents: 3179,
				Currency:         "usd",
				Metadata:         map[string]string{"user_id": "1"},
			},
		}, nil
	}
	e := webhookTestServer(store, provider)

	require.Equal(t, http.StatusOK, postWebhook(e).Code)
	require.Len(t, store.orders, 1)
	first := store.orders["cs_1"]

	// Stripe retries deliver the same event again.
	require.Equal(t, http.StatusOK, postWebhook(e).Code)
	assert.Len(t, store.orders, 1)
	assert.Equal(t, first.ID, store.orders["cs_1"].ID)
}

func TestWebhookUnknownSessionAcknowledged(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.ConstructWebhookEventFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{
			Type: billing.EventCheckoutCompleted,
			Session: &billing.CheckoutSession{
				ID:            "cs_never_issued",
				PaymentStatus: "paid",
				Metadata:      map[string]string{"user_id": "1"},
			},
		}, nil
	}
	e := webhookTestServer(newStubOrderStore(), provider)

	// Acknowledged so the provider stops retrying an event that can
	// never succeed.
	assert.Equal(t, http.StatusOK, postWebhook(e).Code)
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.ConstructWebhookEventFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{Type: "invoice.paid"}, nil
	}
	e := webhookTestServer(newStubOrderStore(), provider)

	assert.Equal(t, http.StatusOK, postWebhook(e).Code)
}

func TestWebhookExpiredMarksAttemptFailed(t *testing.T) {
	store := newStubOrderStore()
	store.attempts["cs_1"] = &domain.CheckoutAttempt{
		SessionID: "cs_1", UserID: 1, Status: domain.AttemptPending,
	}

	provider := billing.NewMockProvider()
	provider.ConstructWebhookEventFunc = func(payload []byte, signature string) (*billing.WebhookEvent, error) {
		return &billing.WebhookEvent{
			Type:    billing.EventCheckoutExpired,
			Session: &billing.CheckoutSession{ID: "cs_1"},
		}, nil
	}
	e := webhookTestServer(store, provider)

	require.Equal(t, http.StatusOK, postWebhook(e).Code)
	assert.Equal(t, domain.AttemptFailed, store.attempts["cs_1"].Status)
}
