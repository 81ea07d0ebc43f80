package rest

import (
	"context"
	"net/http"
	"time"
	"vintnercrm/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	SegmentHandler struct {
		validate       *validator.Validate
		segmentService SegmentService
		rebuilder      ProfileRebuilder
		rebuildTimeout time.Duration
	}

	SegmentService interface {
		GetProfile(ctx context.Context, customerCode string) (domain.CustomerProfile, error)
		ListSegment(ctx context.Context, segment string, limit, offset int) ([]domain.CustomerProfile, error)
		SegmentCounts(ctx context.Context) (map[string]int64, error)
	}

	// ProfileRebuilder recomputes profiles from order history without
	// touching recommendation rows.
	ProfileRebuilder interface {
		RebuildProfiles(ctx context.Context, customerCodes []string) (int, error)
	}

	SegmentListQuery struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}

	RebuildProfilesRequest struct {
		CustomerCodes []string `json:"customer_codes,omitempty"`
	}
)

func NewSegmentHandler(svc SegmentService, rebuilder ProfileRebuilder) *SegmentHandler {
	return &SegmentHandler{
		validate:       validator.New(),
		segmentService: svc,
		rebuilder:      rebuilder,
		rebuildTimeout: 10 * time.Minute,
	}
}

// GET /api/v1/customers/:customer_code/profile
func (h *SegmentHandler) GetProfile(c echo.Context) error {
	customerCode := c.Param("customer_code")
	if customerCode == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing customer_code"})
	}

	profile, err := h.segmentService.GetProfile(c.Request().Context(), customerCode)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

// GET /api/v1/segments/:segment/customers?limit=100&offset=0
func (h *SegmentHandler) ListSegment(c echo.Context) error {
	segment := c.Param("segment")
	if segment == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing segment"})
	}

	var q SegmentListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	profiles, err := h.segmentService.ListSegment(c.Request().Context(), segment, q.Limit, q.Offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profiles))
}

// Rebuild recomputes and upserts profiles for the given customers, or the
// whole base when none are named. Recommendation rows are left untouched.
//
// POST /api/v1/segments/rebuild
func (h *SegmentHandler) Rebuild(c echo.Context) error {
	var req RebuildProfilesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.rebuildTimeout)
	defer cancel()

	rebuilt, err := h.rebuilder.RebuildProfiles(ctx, req.CustomerCodes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int{"rebuilt": rebuilt}))
}

// GET /api/v1/segments
func (h *SegmentHandler) SegmentCounts(c echo.Context) error {
	counts, err := h.segmentService.SegmentCounts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(counts))
}
