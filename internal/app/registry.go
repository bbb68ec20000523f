package app

import (
	"github.com/MySundayS/employee-lita/internal/config"
	"github.com/MySundayS/employee-lita/internal/dashboard"
	"github.com/MySundayS/employee-lita/internal/middleware"
	"github.com/MySundayS/employee-lita/internal/store"
	"github.com/MySundayS/employee-lita/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	st store.Store,
	rdb *redis.Client,
	publisher syncer.EventPublisher,
) {
	// --- Services ---
	syncService := syncer.NewService(
		buildDeviceClient(cfg),
		st,
		publisher,
		syncer.Options{
			DeviceIP:    cfg.DeviceIP,
			Retries:     cfg.SyncRetries,
			RetryDelay:  cfg.SyncRetryDelay,
			CallTimeout: cfg.DeviceTimeout,
		},
	)
	loader := dashboard.NewSnapshotLoader(st, rdb, cfg.SyncInterval)
	dashboardService := dashboard.NewService(loader)

	// --- Handlers ---
	dashboardHandler := dashboard.NewHandler(dashboardService, syncService, loader, cfg.SyncInterval)

	// --- Middleware & Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(10, 20))

	api := router.Group("/api/v1")
	{
		dashboard.RegisterRoutes(api, dashboardHandler)
	}
	dashboard.RegisterUI(router, dashboardHandler)
}
