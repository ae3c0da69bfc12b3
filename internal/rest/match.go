package rest

import (
	"context"
	"net/http"
	"time"

	"nurseNav/business/matching"
	"nurseNav/domain"
	"nurseNav/pkg/logger"
	"nurseNav/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	MatchHandler struct {
		validate        *validator.Validate
		matchingService MatchingService
		timeout         time.Duration
	}

	MatchingService interface {
		MatchedResults(ctx context.Context, userID uint, opts matching.Options) ([]domain.MatchResult, error)
	}

	MatchQuery struct {
		Sort     string  `query:"sort" validate:"omitempty,oneof=match facility pay"`
		Index    string  `query:"index"`
		MinIndex float64 `query:"min" validate:"gte=0,lte=100"`
	}
)

func NewMatchHandler(svc MatchingService) *MatchHandler {
	return &MatchHandler{
		validate:        validator.New(),
		matchingService: svc,
		timeout:         10 * time.Second,
	}
}

// GET /api/v1/matches?sort=match&index=safety&min=60
func (h *MatchHandler) MatchedResults(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var q MatchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	start := time.Now()
	results, err := h.matchingService.MatchedResults(ctx, userID, matching.Options{
		Sort:     q.Sort,
		Index:    q.Index,
		MinIndex: q.MinIndex,
	})
	if err != nil {
		logger.Error("Failed to compute matched results", err)
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "results temporarily unavailable, retry shortly"})
	}

	metrics.MatchRequestLatency.Observe(time.Since(start).Seconds())
	metrics.MatchRequests.Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}
