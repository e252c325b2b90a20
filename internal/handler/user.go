package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/middleware"
	"github.com/tkarlsen/bodega/internal/service"
)

// UserHandler serves signup, login, and profile endpoints.
type UserHandler struct {
	users  *service.UserService
	orders *service.OrderService
}

func NewUserHandler(users *service.UserService, orders *service.OrderService) *UserHandler {
	return &UserHandler{users: users, orders: orders}
}

// RegisterRoutes mounts the auth endpoints on the public group, which
// carries the rate limiter, and the profile endpoints on the
// authenticated group.
func (h *UserHandler) RegisterRoutes(public, g *echo.Group) {
	public.POST("/signup", h.signup)
	public.POST("/login", h.login)
	public.POST("/user/check-email", h.checkEmail)

	g.GET("/user/profile", h.profile)
	g.PUT("/user/update", h.update)
	g.GET("/user/ordered", h.ordered)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type checkEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

func (h *UserHandler) signup(c echo.Context) error {
	var req domain.SignupParams
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.users.Signup(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, authResponse{Success: true, Token: token, User: user})
}

func (h *UserHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, Token: token, User: user})
}

func (h *UserHandler) checkEmail(c echo.Context) error {
	var req checkEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	exists, err := h.users.CheckEmail(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

func (h *UserHandler) profile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	user, err := h.users.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) update(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req domain.UpdateUserParams
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ordered(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orders, err := h.orders.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}
