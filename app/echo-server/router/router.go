package router

import (
	"nurseNav/internal/middleware"
	"nurseNav/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupMatchRoutes(api *echo.Group, handler *rest.MatchHandler) {
	matches := api.Group("/matches", middleware.AuthMiddleware())
	matches.GET("", handler.MatchedResults)
}

func SetupEntitlementRoutes(api *echo.Group, handler *rest.EntitlementHandler) {
	ent := api.Group("/entitlements", middleware.AuthMiddleware())

	ent.GET("", handler.Usage)
	ent.POST("/views", handler.RecordView)
	ent.POST("/saves", handler.RecordSave)
	ent.DELETE("/saves/:jobID", handler.RecordUnsave)
	ent.POST("/chat", handler.ConsumeChat)
	ent.POST("/unlock", handler.UnlockFeature)
}

func SetupPreferenceRoutes(api *echo.Group, handler *rest.PreferenceHandler) {
	prefs := api.Group("/preferences", middleware.AuthMiddleware())

	prefs.GET("", handler.GetPreferences)
	prefs.PUT("", handler.UpdatePreferences)
}

func SetupTierAdminRoutes(api *echo.Group, handler *rest.TierAdminHandler) {
	admin := api.Group("/admin/tier-policies", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("", handler.ListPolicies)
	admin.PUT("", handler.UpsertPolicy)
}
