package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nicolukazzz/reservas-api/api/swagger"
	"github.com/nicolukazzz/reservas-api/internal/handler"
	"github.com/nicolukazzz/reservas-api/internal/middleware"
	"github.com/nicolukazzz/reservas-api/internal/repository"
	"github.com/nicolukazzz/reservas-api/internal/service"
	"github.com/nicolukazzz/reservas-api/pkg/cache"
	"github.com/nicolukazzz/reservas-api/pkg/config"
	"github.com/nicolukazzz/reservas-api/pkg/database"
	"github.com/nicolukazzz/reservas-api/pkg/logger"
	corsmiddleware "github.com/nicolukazzz/reservas-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nicolukazzz/reservas-api/pkg/middleware/requestid"
	"github.com/nicolukazzz/reservas-api/pkg/storage"
)

// @title Reservas API
// @version 1.0.0
// @description Multi-tenant booking API: availability resolution, conflict-checked reservations, staff and hours configuration, agenda exports.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	clock := service.SystemClock()
	metricsSvc := service.NewMetricsService()

	reservationRepo := repository.NewReservationRepository(db, cfg.Booking.DefaultDurationMinutes)
	businessRepo := repository.NewBusinessRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr,
		cfg.Availability.CacheEnabled && redisClient != nil)
	availabilitySvc := service.NewAvailabilityService(businessRepo, staffRepo, reservationRepo, cacheSvc, clock, cfg.Booking, logr)
	bookingSvc := service.NewBookingService(businessRepo, staffRepo, offeringRepo, reservationRepo, availabilitySvc,
		validate, clock, cfg.Booking, logr)
	hoursSvc := service.NewHoursService(businessRepo, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	offeringSvc := service.NewOfferingService(offeringRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(reservationRepo, staffRepo, store, signer, service.ExportQueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	reservationHandler := handler.NewReservationHandler(bookingSvc, metricsSvc)
	staffHandler := handler.NewStaffHandler(staffSvc, bookingSvc)
	hoursHandler := handler.NewHoursHandler(hoursSvc)
	offeringHandler := handler.NewOfferingHandler(offeringSvc)

	clients := api.Group("/clients/:clientId")
	{
		clients.GET("/availability/:date", availabilityHandler.Day)

		clients.GET("/reservations", reservationHandler.List)
		clients.POST("/reservations", reservationHandler.Create)
		clients.POST("/reservations/validate", reservationHandler.Validate)
		clients.GET("/reservations/:id", reservationHandler.Get)
		clients.PUT("/reservations/:id", reservationHandler.Update)
		clients.PATCH("/reservations/:id/status", reservationHandler.UpdateStatus)
		clients.DELETE("/reservations/:id", reservationHandler.Delete)

		clients.GET("/staff", staffHandler.List)
		clients.POST("/staff", staffHandler.Create)
		clients.POST("/staff/available", staffHandler.Available)
		clients.GET("/staff/:id", staffHandler.Get)
		clients.PUT("/staff/:id", staffHandler.Update)
		clients.DELETE("/staff/:id", staffHandler.Deactivate)

		clients.GET("/hours", hoursHandler.Get)
		clients.PUT("/hours", hoursHandler.Put)

		clients.GET("/services", offeringHandler.List)
		clients.POST("/services", offeringHandler.Create)
		clients.GET("/services/:id", offeringHandler.Get)
		clients.PUT("/services/:id", offeringHandler.Update)
		clients.DELETE("/services/:id", offeringHandler.Delete)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		clients.POST("/exports", exportHandler.Enqueue)
		clients.GET("/exports/:id", exportHandler.Status)
		api.GET("/exports/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
