package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vintnercrm/app/echo-server/metrics"
	"vintnercrm/app/echo-server/router"
	"vintnercrm/business/auth"
	"vintnercrm/business/catalog"
	"vintnercrm/business/customers"
	"vintnercrm/business/recommendation"
	"vintnercrm/business/segments"
	"vintnercrm/internal/middleware"
	psqlRepo "vintnercrm/internal/repository/postgres"
	redisRepo "vintnercrm/internal/repository/redis"
	"vintnercrm/internal/rest"
	"vintnercrm/pkg/config"
	"vintnercrm/pkg/database"
	redisdb "vintnercrm/pkg/database/redis"
	"vintnercrm/pkg/logger"
	"vintnercrm/pkg/utils"

	"github.com/go-playground/validator/v10"
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
	logger.Info("Starting Vintner CRM", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	customerRepo := psqlRepo.NewCustomerRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	orderLineRepo := psqlRepo.NewOrderLineRepository(db)
	contactRepo := psqlRepo.NewContactEventRepository(db)
	profileRepo := psqlRepo.NewProfileRepository(db)
	recoRepo := psqlRepo.NewRecoRepository(db)
	recoConfigRepo := psqlRepo.NewRecoConfigRepository(db)

	sessionRepo := redisRepo.NewSessionRepository(redisClient)
	recoCache := redisRepo.NewRecoCache(redisClient, time.Duration(cfg.Reco.CacheTTLMinutes)*time.Minute)

	// Init service
	authService := auth.NewAuthService(userRepo, sessionRepo, validate, cfg.Reco.TokenEncryptionKey)
	catalogService := catalog.NewService(productRepo)
	customerService := customers.NewService(customerRepo, contactRepo)
	segmentService := segments.NewService(profileRepo)

	engineCfg := recommendation.DefaultConfig()
	engineCfg.MaxItems = cfg.Reco.MaxItems
	engineCfg.SilenceCheck = cfg.Reco.SilenceCheck

	engine := recommendation.NewEngine(
		orderLineRepo,
		productRepo,
		contactRepo,
		recoRepo,
		segmentService,
		recoConfigRepo,
		engineCfg,
		cfg.Reco.BatchWorkers,
	)
	recoReader := recommendation.NewReader(recoRepo, recoCache)

	// Init handler
	authHandler := rest.NewAuthHandler(authService)
	productHandler := rest.NewProductHandler(catalogService)
	customerHandler := rest.NewCustomerHandler(customerService)
	segmentHandler := rest.NewSegmentHandler(segmentService, engine)
	recoHandler := rest.NewRecommendationHandler(engine, recoReader)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	metrics.Init()
	e.Use(echomiddleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, authHandler, authRequired)
	router.SetupProductRoutes(api, productHandler, authRequired, adminOnly)
	router.SetupCustomerRoutes(api, customerHandler, recoHandler, segmentHandler, authRequired, adminOnly)
	router.SetupSegmentRoutes(api, segmentHandler, authRequired, adminOnly)
	router.SetupRecommendationRoutes(api, recoHandler, authRequired, adminOnly)

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

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
