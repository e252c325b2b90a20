package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tkarlsen/bodega/internal/middleware"
	"github.com/tkarlsen/bodega/internal/service"
)

// CheckoutHandler serves the payment session endpoints.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// RegisterRoutes mounts the checkout endpoints on the authenticated
// group.
func (h *CheckoutHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/create-checkout-session", h.create)
	g.GET("/checkout/estimate", h.estimate)
	g.GET("/checkout/session/:id", h.sessionStatus)
}

func (h *CheckoutHandler) create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	result, err := h.checkout.Start(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) estimate(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	estimate, err := h.checkout.Estimate(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"estimated_usd": estimate})
}

// sessionStatus lets the success page poll the payment state. It is
// read-only; orders are created by the webhook alone.
func (h *CheckoutHandler) sessionStatus(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	status, err := h.checkout.SessionStatus(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
