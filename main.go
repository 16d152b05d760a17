package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	postgrest "github.com/supabase-community/postgrest-go"

	"lensfolio/api-gateway/config"
	_ "lensfolio/api-gateway/docs"
	"lensfolio/api-gateway/handlers"
	"lensfolio/api-gateway/internal/auth"
	"lensfolio/api-gateway/internal/health"
	"lensfolio/api-gateway/internal/media"
	"lensfolio/api-gateway/internal/repository"
	"lensfolio/api-gateway/internal/worker"
	"lensfolio/api-gateway/middleware"
	"lensfolio/api-gateway/utils"
)

const (
	healthInterval = 30 * time.Second
	mediaQueueSize = 100
	bodyLimit      = 100 << 20
)

// @title Lensfolio API
// @version 1.0
// @description Content API of the Lensfolio portfolio site.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(settings.LogLevel)

	supabase, err := config.NewSupabaseClient(settings)
	if err != nil {
		logger.Fatalf("Failed to initialize Supabase: %v", err)
	}
	rest, err := config.NewRestClient(settings, "")
	if err != nil {
		logger.Fatalf("Failed to initialize PostgREST client: %v", err)
	}

	repo := repository.New(rest,
		repository.WithTimeout(settings.RequestTimeout),
		repository.WithLogger(logger),
	)
	gateway := auth.NewGateway(
		auth.NewGoTrueProvider(supabase.Auth),
		auth.NewVerifier(settings.SupabaseJWTSecret),
		settings.RequestTimeout,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := worker.NewDispatcher(settings.MediaWorkers, mediaQueueSize, logger)
	dispatcher.Run(ctx)

	reporter := health.NewReporter(repo, logger)
	go reporter.Run(ctx, healthInterval)
	if settings.GRPCHealthPort != "" {
		go func() {
			if err := health.Serve(ctx, ":"+settings.GRPCHealthPort, reporter); err != nil {
				logger.Errorf("gRPC health service failed: %v", err)
			}
		}()
	}

	h := handlers.NewApplicationHandler(repo, gateway, logger)
	h.Media = media.NewStore(
		media.NewSupabaseBucket(supabase.Storage, settings.MediaBucket),
		settings.PublicMediaPrefix(),
		settings.RequestTimeout,
		logger,
	)
	h.Jobs = dispatcher
	h.Health = reporter
	h.RestClient = func(accessToken string) (*postgrest.Client, error) {
		return config.NewRestClient(settings, accessToken)
	}

	app := fiber.New(fiber.Config{
		AppName:   "lensfolio-api-gateway",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return utils.RespondWithError(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: settings.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger(logger))

	h.RegisterRoutes(app)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down API Gateway...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("Error during shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", settings.Port)
	logger.Infof("Starting API Gateway on port %s...", settings.Port)
	if err := app.Listen(addr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}

	dispatcher.Stop()
	logger.Info("API Gateway shut down gracefully.")
}
