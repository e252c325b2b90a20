package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/billing"
	"github.com/tkarlsen/bodega/internal/service"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// Stripe webhook payloads are small; anything larger is rejected
// before signature verification.
const maxWebhookBody = 64 * 1024

// WebhookHandler receives payment provider events. This is the only
// path that creates orders: a client returning to the success page
// proves nothing.
type WebhookHandler struct {
	provider billing.Provider
	orders   *service.OrderService
	metrics  *telemetry.BusinessMetrics
	logger   zerolog.Logger
}

func NewWebhookHandler(provider billing.Provider, orders *service.OrderService, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		provider: provider,
		orders:   orders,
		metrics:  metrics,
		logger:   logger.With().Str("handler", "webhook").Logger(),
	}
}

// RegisterRoutes mounts the webhook endpoint. No auth middleware: the
// signature header is the authentication.
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/stripe", h.handleStripe)
}

func (h *WebhookHandler) handleStripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := h.provider.ConstructWebhookEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return c.NoContent(http.StatusBadRequest)
	}

	h.metrics.WebhookReceived.WithLabelValues(event.Type).Inc()

	ctx := c.Request().Context()
	switch event.Type {
	case billing.EventCheckoutCompleted:
		if _, err := h.orders.HandleCheckoutCompleted(ctx, event.Session); err != nil {
			return h.fail(c, event.Type, err)
		}
	case billing.EventCheckoutExpired:
		if err := h.orders.HandleCheckoutExpired(ctx, event.Session); err != nil {
			return h.fail(c, event.Type, err)
		}
	default:
		// Unhandled event types are acknowledged so the provider
		// stops retrying them.
		h.logger.Debug().Str("event_type", event.Type).Msg("ignoring webhook event")
	}

	h.metrics.WebhookProcessed.WithLabelValues(event.Type).Inc()
	return c.NoContent(http.StatusOK)
}

// fail acknowledges events that can never succeed and asks the
// provider to retry the rest.
func (h *WebhookHandler) fail(c echo.Context, eventType string, err error) error {
	h.metrics.WebhookFailed.WithLabelValues(eventType).Inc()
	h.logger.Error().Err(err).Str("event_type", eventType).Msg("webhook processing failed")

	// Sessions we never issued and malformed metadata won't improve
	// on retry.
	if errors.Is(err, service.ErrUnknownAttempt) || errors.Is(err, service.ErrMissingUserID) {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusInternalServerError)
}
