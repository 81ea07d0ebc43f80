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
	RecommendationHandler struct {
		validate   *validator.Validate
		engine     RecoEngine
		reader     RecoReader
		runTimeout time.Duration
	}

	RecoEngine interface {
		GenerateBatch(ctx context.Context, customerCodes []string, maxItems int) (string, error)
	}

	RecoReader interface {
		LatestForCustomer(ctx context.Context, customerCode string) ([]domain.RecoItem, error)
		InvalidateCache(ctx context.Context)
		GetRun(ctx context.Context, runID string) (domain.RecoRun, error)
		ListRuns(ctx context.Context, limit int) ([]domain.RecoRun, error)
		ListItemsByRun(ctx context.Context, runID string, limit, offset int) ([]domain.RecoItem, error)
		ListAuditsByRun(ctx context.Context, runID string) ([]domain.RecoAudit, error)
	}

	TriggerRunRequest struct {
		CustomerCodes []string `json:"customer_codes,omitempty"`
		MaxItems      int      `json:"max_items,omitempty" validate:"omitempty,min=1,max=10"`
	}

	RunItemsQuery struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
)

func NewRecommendationHandler(engine RecoEngine, reader RecoReader) *RecommendationHandler {
	return &RecommendationHandler{
		validate:   validator.New(),
		engine:     engine,
		reader:     reader,
		runTimeout: 10 * time.Minute,
	}
}

// TriggerRun starts a batch scoring run and waits for it to finish. Batch
// runs for the full customer base normally go through the CLI runner; this
// endpoint serves targeted re-scores and small books.
func (h *RecommendationHandler) TriggerRun(c echo.Context) error {
	var req TriggerRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.runTimeout)
	defer cancel()

	runID, err := h.engine.GenerateBatch(ctx, req.CustomerCodes, req.MaxItems)
	if err != nil {
		logger.Error("Failed to run batch scoring", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	h.reader.InvalidateCache(ctx)

	run, err := h.reader.GetRun(ctx, runID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(run))
}

// GET /api/v1/recommendations/runs?limit=20
func (h *RecommendationHandler) ListRuns(c echo.Context) error {
	var q RunItemsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	runs, err := h.reader.ListRuns(c.Request().Context(), q.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(runs))
}

// GET /api/v1/recommendations/runs/:run_id
func (h *RecommendationHandler) GetRun(c echo.Context) error {
	runID := c.Param("run_id")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing run_id"})
	}

	run, err := h.reader.GetRun(c.Request().Context(), runID)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(run))
}

// GET /api/v1/recommendations/runs/:run_id/items?limit=100&offset=0
func (h *RecommendationHandler) ListRunItems(c echo.Context) error {
	runID := c.Param("run_id")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing run_id"})
	}

	var q RunItemsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 200
	}

	items, err := h.reader.ListItemsByRun(c.Request().Context(), runID, q.Limit, q.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// GET /api/v1/recommendations/runs/:run_id/audits
func (h *RecommendationHandler) ListRunAudits(c echo.Context) error {
	runID := c.Param("run_id")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing run_id"})
	}

	audits, err := h.reader.ListAuditsByRun(c.Request().Context(), runID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(audits))
}

// GET /api/v1/customers/:customer_code/recommendations
func (h *RecommendationHandler) LatestForCustomer(c echo.Context) error {
	customerCode := c.Param("customer_code")
	if customerCode == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing customer_code"})
	}

	items, err := h.reader.LatestForCustomer(c.Request().Context(), customerCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}
