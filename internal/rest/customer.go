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
	CustomerHandler struct {
		validate        *validator.Validate
		customerService CustomerService
		timeout         time.Duration
	}

	CustomerService interface {
		GetCustomer(ctx context.Context, customerCode string) (domain.Customer, error)
		ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error)
		UpsertCustomer(ctx context.Context, customer *domain.Customer) error
		RecordContact(ctx context.Context, event *domain.ContactEvent) error
		ContactHistory(ctx context.Context, customerCode string, limit int) ([]domain.ContactEvent, error)
	}

	CustomerListQuery struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}

	CustomerUpsertRequest struct {
		CustomerCode string `json:"customer_code" validate:"required"`
		LastName     string `json:"last_name"`
		FirstName    string `json:"first_name"`
		Email        string `json:"email" validate:"omitempty,email"`
		Phone        string `json:"phone"`
		PostalCode   string `json:"postal_code"`
		City         string `json:"city"`
		Country      string `json:"country"`
		IsBounced    bool   `json:"is_bounced"`
		IsOptout     bool   `json:"is_optout"`
	}

	ContactEventRequest struct {
		ContactDate string `json:"contact_date" validate:"required,datetime=2006-01-02"`
		Channel     string `json:"channel" validate:"required,oneof=email phone mail visit"`
		Status      string `json:"status"`
		CampaignID  string `json:"campaign_id"`
	}
)

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{
		validate:        validator.New(),
		customerService: svc,
		timeout:         10 * time.Second,
	}
}

// GET /api/v1/customers?limit=100&offset=0
func (h *CustomerHandler) List(c echo.Context) error {
	var q CustomerListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 100
	}

	customers, err := h.customerService.ListCustomers(c.Request().Context(), q.Limit, q.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(customers))
}

// GET /api/v1/customers/:customer_code
func (h *CustomerHandler) Get(c echo.Context) error {
	customerCode := c.Param("customer_code")
	if customerCode == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing customer_code"})
	}

	customer, err := h.customerService.GetCustomer(c.Request().Context(), customerCode)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(customer))
}

// PUT /api/v1/customers (admin)
func (h *CustomerHandler) Upsert(c echo.Context) error {
	var req CustomerUpsertRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	customer := domain.Customer{
		CustomerCode:  req.CustomerCode,
		LastName:      req.LastName,
		FirstName:     req.FirstName,
		Email:         req.Email,
		Phone:         req.Phone,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Country:       req.Country,
		IsBounced:     req.IsBounced,
		IsOptout:      req.IsOptout,
		IsContactable: !req.IsBounced && !req.IsOptout,
	}

	if err := h.customerService.UpsertCustomer(ctx, &customer); err != nil {
		logger.Error("Failed to upsert customer", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(customer))
}

// POST /api/v1/customers/:customer_code/contacts
func (h *CustomerHandler) RecordContact(c echo.Context) error {
	customerCode := c.Param("customer_code")
	if customerCode == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing customer_code"})
	}

	var req ContactEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	contactDate, err := time.Parse("2006-01-02", req.ContactDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid contact_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event := domain.ContactEvent{
		CustomerCode: customerCode,
		ContactDate:  contactDate,
		Channel:      req.Channel,
		Status:       req.Status,
		CampaignID:   req.CampaignID,
	}

	if err := h.customerService.RecordContact(ctx, &event); err != nil {
		logger.Error("Failed to record contact", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}

// GET /api/v1/customers/:customer_code/contacts?limit=20
func (h *CustomerHandler) ContactHistory(c echo.Context) error {
	customerCode := c.Param("customer_code")
	if customerCode == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing customer_code"})
	}

	var q CustomerListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	events, err := h.customerService.ContactHistory(c.Request().Context(), customerCode, q.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}
