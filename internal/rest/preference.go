package rest

import (
	"context"
	"net/http"
	"time"

	"nurseNav/business/entitlement"
	"nurseNav/domain"
	"nurseNav/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PreferenceHandler struct {
		validate          *validator.Validate
		preferenceService PreferenceService
		timeout           time.Duration
	}

	PreferenceService interface {
		Get(ctx context.Context, userID uint) (domain.PriorityVector, error)
		Update(ctx context.Context, userID uint, weights map[string]int) (entitlement.Decision, error)
	}

	UpdatePreferenceRequest struct {
		Weights map[string]int `json:"weights" validate:"required"`
	}

	UpdatePreferenceResponse struct {
		Granted   bool           `json:"granted"`
		Remaining int            `json:"remaining"`
		Weights   map[string]int `json:"weights,omitempty"`
	}
)

func NewPreferenceHandler(preferenceService PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		validate:          validator.New(),
		preferenceService: preferenceService,
		timeout:           10 * time.Second,
	}
}

// GET /api/v1/preferences
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	weights, err := h.preferenceService.Get(ctx, userID)
	if err != nil {
		logger.Error("Failed to load preferences", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(weights))
}

// PUT /api/v1/preferences
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdatePreferenceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.preferenceService.Update(ctx, userID, req.Weights)
	if err != nil {
		logger.Error("Failed to update preferences", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	resp := UpdatePreferenceResponse{
		Granted:   decision.Granted,
		Remaining: decision.Remaining,
	}
	if decision.Granted {
		resp.Weights = req.Weights
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}
