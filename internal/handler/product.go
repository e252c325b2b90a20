package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/service"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes mounts the public catalog reads on e and the write
// endpoints on the admin group.
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, admin *echo.Group) {
	e.GET("/allproducts", h.list)
	e.GET("/product/:id", h.get)
	e.GET("/newcollections", h.newCollections)
	e.GET("/popular-products", h.popular)

	admin.POST("/addproduct", h.create)
	admin.POST("/updateproduct/:id", h.update)
	admin.POST("/removeproduct", h.remove)
	admin.POST("/togglePopular", h.togglePopular)
}

type createProductRequest struct {
	Name               string `json:"name" validate:"required"`
	Image              string `json:"image"`
	Category           string `json:"category" validate:"required"`
	PricePaise         int64  `json:"price_paise" validate:"required,gt=0"`
	OriginalPricePaise int64  `json:"original_price_paise" validate:"gte=0"`
	DiscountPercent    int32  `json:"discount_percent" validate:"gte=0,lte=100"`
}

type updateProductRequest struct {
	Name               *string `json:"name"`
	Image              *string `json:"image"`
	Category           *string `json:"category"`
	PricePaise         *int64  `json:"price_paise"`
	OriginalPricePaise *int64  `json:"original_price_paise"`
	DiscountPercent    *int32  `json:"discount_percent"`
	Available          *bool   `json:"available"`
}

type idRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

func (h *ProductHandler) list(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) newCollections(c echo.Context) error {
	products, err := h.products.NewCollections(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) popular(c echo.Context) error {
	products, err := h.products.Popular(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.products.Create(c.Request().Context(), domain.CreateProductParams{
		Name:               req.Name,
		Image:              req.Image,
		Category:           req.Category,
		PricePaise:         req.PricePaise,
		OriginalPricePaise: req.OriginalPricePaise,
		DiscountPercent:    req.DiscountPercent,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.products.Update(c.Request().Context(), id, domain.UpdateProductParams{
		Name:               req.Name,
		Image:              req.Image,
		Category:           req.Category,
		PricePaise:         req.PricePaise,
		OriginalPricePaise: req.OriginalPricePaise,
		DiscountPercent:    req.DiscountPercent,
		Available:          req.Available,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) remove(c echo.Context) error {
	var req idRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.products.Delete(c.Request().Context(), req.ID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *ProductHandler) togglePopular(c echo.Context) error {
	var req idRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	popular, err := h.products.TogglePopular(c.Request().Context(), req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"popular": popular})
}
