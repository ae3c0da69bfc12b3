package rest

import (
	"context"
	"net/http"
	"time"

	"nurseNav/domain"
	"nurseNav/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TierAdminHandler struct {
		validate    *validator.Validate
		tierService TierAdminService
		timeout     time.Duration
	}

	TierAdminService interface {
		List(ctx context.Context) (map[string]domain.TierPolicy, error)
		Upsert(ctx context.Context, rec domain.TierPolicyRecord) error
	}

	UpsertTierPolicyRequest struct {
		Tier                  string `json:"tier" validate:"required"`
		JobViewLimit          int    `json:"job_view_limit" validate:"gte=-1"`
		SavedJobLimit         int    `json:"saved_job_limit" validate:"gte=-1"`
		DailyChatLimit        int    `json:"daily_chat_limit" validate:"gte=-1"`
		PreferenceChangeLimit int    `json:"preference_change_limit" validate:"gte=-1"`
		CanSeeIndices         bool   `json:"can_see_indices"`
		CanUseAdvancedMoods   bool   `json:"can_use_advanced_moods"`
	}
)

func NewTierAdminHandler(tierService TierAdminService) *TierAdminHandler {
	return &TierAdminHandler{
		validate:    validator.New(),
		tierService: tierService,
		timeout:     10 * time.Second,
	}
}

// GET /api/v1/admin/tier-policies
func (h *TierAdminHandler) ListPolicies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	policies, err := h.tierService.List(ctx)
	if err != nil {
		logger.Error("Failed to list tier policies", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(policies))
}

// PUT /api/v1/admin/tier-policies
func (h *TierAdminHandler) UpsertPolicy(c echo.Context) error {
	var req UpsertTierPolicyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec := domain.TierPolicyRecord{
		Tier:                  req.Tier,
		JobViewLimit:          req.JobViewLimit,
		SavedJobLimit:         req.SavedJobLimit,
		DailyChatLimit:        req.DailyChatLimit,
		PreferenceChangeLimit: req.PreferenceChangeLimit,
		CanSeeIndices:         req.CanSeeIndices,
		CanUseAdvancedMoods:   req.CanUseAdvancedMoods,
	}
	if err := h.tierService.Upsert(ctx, rec); err != nil {
		logger.Error("Failed to upsert tier policy", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rec))
}
