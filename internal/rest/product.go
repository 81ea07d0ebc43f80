package rest

import (
	"context"
	"net/http"
	"time"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ProductHandler struct {
		validate       *validator.Validate
		productService ProductService
		timeout        time.Duration
	}

	ProductService interface {
		GetProduct(ctx context.Context, productKey string) (domain.Product, error)
		ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
		UpsertProduct(ctx context.Context, product *domain.Product) error
	}

	ProductListQuery struct {
		ActiveOnly bool `query:"active_only"`
	}

	ProductUpsertRequest struct {
		ProductKey      string  `json:"product_key" validate:"required"`
		ProductName     string  `json:"product_name" validate:"required"`
		Family          string  `json:"family"`
		Cepage          string  `json:"cepage"`
		PriceBand       string  `json:"price_band" validate:"omitempty,oneof=BUDGET STANDARD PREMIUM LUXURY"`
		IsPremium       bool    `json:"is_premium"`
		MarginPct       float64 `json:"margin_pct" validate:"min=0,max=100"`
		PopularityScore float64 `json:"popularity_score" validate:"min=0,max=1"`
		IsActive        *bool   `json:"is_active,omitempty"`
	}
)

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		validate:       validator.New(),
		productService: svc,
		timeout:        10 * time.Second,
	}
}

// GET /api/v1/products?active_only=true
func (h *ProductHandler) List(c echo.Context) error {
	var q ProductListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	products, err := h.productService.ListProducts(c.Request().Context(), q.ActiveOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

// GET /api/v1/products/:product_key
func (h *ProductHandler) Get(c echo.Context) error {
	productKey := c.Param("product_key")
	if productKey == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing product_key"})
	}

	product, err := h.productService.GetProduct(c.Request().Context(), productKey)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}

// PUT /api/v1/products (admin)
func (h *ProductHandler) Upsert(c echo.Context) error {
	var req ProductUpsertRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := domain.Product{
		ProductKey:      req.ProductKey,
		ProductName:     req.ProductName,
		Family:          req.Family,
		Cepage:          req.Cepage,
		PriceBand:       req.PriceBand,
		IsPremium:       req.IsPremium,
		MarginPct:       req.MarginPct,
		PopularityScore: req.PopularityScore,
		IsActive:        isActive,
	}

	if err := h.productService.UpsertProduct(ctx, &product); err != nil {
		logger.Error("Failed to upsert product", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(product))
}
