package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/cache"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/config"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/database"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/handlers"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/logger"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/middleware"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/services"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

const serviceName = "property-search-api"

// @title Property Portal Search API
// @version 1.0.0
// @description Location resolution and property search engine
// @BasePath /v1
func main() {
	_ = logger.Init()
	defer logger.Sync()
	log := logger.GetLogger("main")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// OpenTelemetry tracing
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnw("Failed to initialize tracer", "error", err)
	}
	defer func() {
		if tracerShutdown != nil {
			if err := tracerShutdown(ctx); err != nil {
				log.Warnw("Error shutting down tracer", "error", err)
			}
		}
	}()

	// OpenTelemetry metrics
	meterShutdown, err := telemetry.InitMeter(ctx, serviceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnw("Failed to initialize metrics", "error", err)
	}
	defer func() {
		if meterShutdown != nil {
			if err := meterShutdown(ctx); err != nil {
				log.Warnw("Error shutting down metrics", "error", err)
			}
		}
	}()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	poolCtx, poolCancel := context.WithCancel(ctx)
	defer poolCancel()
	go database.StartConnectionPoolMetricsCollector(poolCtx, db.DB, 15*time.Second)

	// Result cache: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalw("Failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Infow("Redis result cache enabled", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryStore()
		log.Info("REDIS_ADDR not set, using in-process result cache")
	}

	// Services, constructed once and injected into handlers
	resolver := services.NewLocationResolver(db)
	search := services.NewSearchService(db, store, resolver, services.SearchConfig{
		CacheTTL:        cfg.SearchCacheTTL,
		Timeout:         cfg.SearchTimeout,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	app := fiber.New(fiber.Config{
		AppName:      "Property Portal Search API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","request_id":"${respHeader:X-Request-ID}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: serviceName,
	}))
	app.Use(middleware.PrometheusMiddleware())
	// Browse pages and mobile apps call the search API from any origin
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, Origin, User-Agent, X-Requested-With, X-API-Key",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		MaxAge:           86400,
	}))

	setupRoutes(app, cfg, db, search, resolver)

	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Warnw("Error shutting down server", "error", err)
		}
	}()

	log.Infow("Server starting", "port", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalw("Failed to start server", "error", err)
	}
}

func setupRoutes(app *fiber.App, cfg *config.Config, db *database.DB, search *services.SearchService, resolver *services.LocationResolver) {
	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// Prometheus scrape endpoint, private network only
	app.Get("/metrics", middleware.InternalOnly(), middleware.PrometheusHandler())

	v1 := app.Group("/v1")

	// Properties routes (public)
	properties := v1.Group("/properties")
	handlers.SetupPropertyRoutes(properties, search)

	// Locations routes (public)
	locations := v1.Group("/locations")
	handlers.SetupLocationRoutes(locations, resolver)

	// Internal routes (write-path collaborators, API key required)
	internal := v1.Group("/internal")
	handlers.SetupInternalRoutes(internal, cfg, search, resolver)
}
