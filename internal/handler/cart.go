package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/middleware"
	"github.com/tkarlsen/bodega/internal/service"
)

// CartHandler serves the authenticated cart endpoints.
type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// RegisterRoutes mounts the cart endpoints on the authenticated group.
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.get)
	g.POST("/cart/add", h.add)
	g.POST("/cart/remove", h.remove)
	g.POST("/cart/reset", h.reset)
	g.POST("/cart/merge", h.merge)
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity"`
}

type mergeCartRequest struct {
	Items map[int64]int32 `json:"items" validate:"required"`
}

func (h *CartHandler) get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	cart, err := h.carts.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) add(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req cartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.Add(c.Request().Context(), userID, req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) remove(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req cartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.Remove(c.Request().Context(), userID, req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) reset(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.carts.Reset(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) merge(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req mergeCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	merged, err := h.carts.Merge(c.Request().Context(), userID, domain.Cart(req.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, merged)
}
