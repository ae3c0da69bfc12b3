package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"nurseNav/app/echo-server/router"
	"nurseNav/business/entitlement"
	"nurseNav/business/matching"
	"nurseNav/business/preferences"
	"nurseNav/business/tier"
	"nurseNav/internal/middleware"
	psqlRepo "nurseNav/internal/repository/postgres"
	redisRepo "nurseNav/internal/repository/redis"
	"nurseNav/internal/rest"
	"nurseNav/pkg/config"
	"nurseNav/pkg/database"
	redisdb "nurseNav/pkg/database/redis"
	"nurseNav/pkg/logger"
	"nurseNav/pkg/metrics"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting NurseNav matching engine", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)
	logger.Info("Redis connected successfully")

	metrics.Init()

	// Init repo
	jobRepo := psqlRepo.NewJobRepository(db)
	facilityRepo := psqlRepo.NewFacilityRepository(db)
	preferenceRepo := psqlRepo.NewPreferenceRepository(db)
	entitlementRepo := psqlRepo.NewEntitlementRepository(db)
	tierPolicyRepo := psqlRepo.NewTierPolicyRepository(db)
	chatQuotaRepo := redisRepo.NewChatQuotaRepository(redisClient)

	// Init service
	tierResolver := tier.NewResolver(tierPolicyRepo)
	// the tier claim on the caller's JWT is authoritative; the ledger
	// syncs it onto the stored entitlement state per request
	ledger := entitlement.NewLedger(entitlementRepo, chatQuotaRepo, tierResolver, middleware.ClaimsTierProvider{})
	unlockValidator := entitlement.NewUnlockValidator(entitlementRepo, cfg.Unlock.NoFilterCodeHashes)
	preferenceService := preferences.NewService(preferenceRepo, ledger)
	orchestrator := matching.NewOrchestrator(jobRepo, facilityRepo, preferenceRepo, ledger)

	// Init handler
	matchHandler := rest.NewMatchHandler(orchestrator)
	entitlementHandler := rest.NewEntitlementHandler(ledger, unlockValidator)
	preferenceHandler := rest.NewPreferenceHandler(preferenceService)
	tierAdminHandler := rest.NewTierAdminHandler(tierResolver)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Operational endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupMatchRoutes(api, matchHandler)
	router.SetupEntitlementRoutes(api, entitlementHandler)
	router.SetupPreferenceRoutes(api, preferenceHandler)
	router.SetupTierAdminRoutes(api, tierAdminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
