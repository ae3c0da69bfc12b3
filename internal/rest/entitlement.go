package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"nurseNav/business/entitlement"
	"nurseNav/domain"
	"nurseNav/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	EntitlementHandler struct {
		validate      *validator.Validate
		ledgerService LedgerService
		unlockService UnlockService
		timeout       time.Duration
	}

	LedgerService interface {
		RecordView(ctx context.Context, userID uint, jobID uint64) (entitlement.Decision, error)
		RecordSave(ctx context.Context, userID uint, jobID uint64) (entitlement.Decision, error)
		RecordUnsave(ctx context.Context, userID uint, jobID uint64) (entitlement.Decision, error)
		ConsumeChatQuestion(ctx context.Context, userID uint) (entitlement.Decision, error)
		Usage(ctx context.Context, userID uint) (domain.UsageSummary, error)
	}

	UnlockService interface {
		Validate(ctx context.Context, userID uint, code string) (bool, error)
	}

	RecordJobRequest struct {
		JobID uint64 `json:"job_id" validate:"required"`
	}

	UnlockRequest struct {
		Code string `json:"code" validate:"required"`
	}

	AdmissionResponse struct {
		Granted         bool `json:"granted"`
		Remaining       int  `json:"remaining"`
		UpgradeRequired bool `json:"upgrade_required"`
	}
)

func NewEntitlementHandler(ledgerService LedgerService, unlockService UnlockService) *EntitlementHandler {
	return &EntitlementHandler{
		validate:      validator.New(),
		ledgerService: ledgerService,
		unlockService: unlockService,
		timeout:       10 * time.Second,
	}
}

func admission(d entitlement.Decision) AdmissionResponse {
	return AdmissionResponse{
		Granted:         d.Granted,
		Remaining:       d.Remaining,
		UpgradeRequired: !d.Granted,
	}
}

// POST /api/v1/entitlements/views
func (h *EntitlementHandler) RecordView(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req RecordJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.ledgerService.RecordView(ctx, userID, req.JobID)
	if err != nil {
		logger.Error("Failed to record job view", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(admission(decision)))
}

// POST /api/v1/entitlements/saves
func (h *EntitlementHandler) RecordSave(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req RecordJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.ledgerService.RecordSave(ctx, userID, req.JobID)
	if err != nil {
		logger.Error("Failed to record job save", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(admission(decision)))
}

// DELETE /api/v1/entitlements/saves/:jobID
func (h *EntitlementHandler) RecordUnsave(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	jobID, err := strconv.ParseUint(c.Param("jobID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid job id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.ledgerService.RecordUnsave(ctx, userID, jobID)
	if err != nil {
		logger.Error("Failed to remove job save", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(admission(decision)))
}

// POST /api/v1/entitlements/chat
func (h *EntitlementHandler) ConsumeChat(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	decision, err := h.ledgerService.ConsumeChatQuestion(ctx, userID)
	if err != nil {
		logger.Error("Failed to consume chat quota", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(admission(decision)))
}

// POST /api/v1/entitlements/unlock
func (h *EntitlementHandler) UnlockFeature(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	unlocked, err := h.unlockService.Validate(ctx, userID, req.Code)
	if err != nil {
		logger.Error("Failed to validate unlock code", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "unlock failed"})
	}

	// same shape for hit and miss: nothing here may help enumerate codes
	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]bool{"unlocked": unlocked}))
}

// GET /api/v1/entitlements
func (h *EntitlementHandler) Usage(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	usage, err := h.ledgerService.Usage(ctx, userID)
	if err != nil {
		logger.Error("Failed to load usage summary", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(usage))
}
