package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/service"
)

// TicketHandler serves the support ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
}

func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// RegisterRoutes mounts ticket submission publicly and the management
// endpoints on the admin group.
func (h *TicketHandler) RegisterRoutes(e *echo.Echo, admin *echo.Group) {
	e.POST("/support", h.create)

	admin.GET("/supportdatafetch", h.list)
	admin.POST("/removesupport", h.remove)
}

func (h *TicketHandler) create(c echo.Context) error {
	var req domain.CreateTicketParams
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) list(c echo.Context) error {
	tickets, err := h.tickets.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) remove(c echo.Context) error {
	var req idRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.tickets.Delete(c.Request().Context(), req.ID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
