package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-complaint-api/internal/apperrors"
	"github.com/noah-isme/campus-complaint-api/internal/auth"
	"github.com/noah-isme/campus-complaint-api/internal/config"
	"github.com/noah-isme/campus-complaint-api/internal/database"
	"github.com/noah-isme/campus-complaint-api/internal/events"
	"github.com/noah-isme/campus-complaint-api/internal/handler"
	"github.com/noah-isme/campus-complaint-api/internal/middleware"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
	"github.com/noah-isme/campus-complaint-api/internal/router"
	"github.com/noah-isme/campus-complaint-api/internal/service"
	"github.com/noah-isme/campus-complaint-api/internal/storage"
	cloud "github.com/noah-isme/campus-complaint-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	fileStorage, err := newFileStorage(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to create file storage")
	}

	publisher := events.NewNopPublisher()
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer conn.Drain()
		publisher = events.NewNATSPublisher(conn, cfg.NATSSubject, logger)
	}

	validate := apperrors.NewValidator()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	responseRepo := repository.NewComplaintResponseRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	reportRepo := repository.NewAdminReportRepository(db)

	seedService := service.NewSeedService(categoryRepo, statusRepo, userRepo, logger)
	if cfg.SeedEnabled {
		if _, err := seedService.SeedDefaults(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed defaults")
		}
	}

	denylist := newDenylist(redisClient)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)

	attachmentService := service.NewAttachmentService(fileStorage, cfg.UploadMaxSizeKB, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	dashboardService := service.NewAdminDashboardService(reportRepo, categoryRepo, statusRepo, validate, redisClient, cfg.DashboardCacheTTL, logger)
	authService := service.NewAuthService(userRepo, tokens, denylist, validate, dashboardService, logger)
	categoryService := service.NewCategoryService(categoryRepo, validate, activityService, dashboardService, logger)
	statusService := service.NewStatusService(statusRepo, validate, activityService, dashboardService, logger)
	adminUserService := service.NewAdminUserService(userRepo, attachmentService, validate, activityService, dashboardService, logger)
	complaintService := service.NewComplaintService(service.ComplaintServiceDeps{
		Complaints:  complaintRepo,
		Responses:   responseRepo,
		Categories:  categoryRepo,
		Statuses:    statusRepo,
		Attachments: attachmentService,
		Validator:   validate,
		Activity:    activityService,
		Events:      publisher,
		Dashboard:   dashboardService,
		Logger:      logger,
	})
	responseService := service.NewComplaintResponseService(service.ComplaintResponseServiceDeps{
		Complaints:  complaintRepo,
		Responses:   responseRepo,
		Attachments: attachmentService,
		Validator:   validate,
		Events:      publisher,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    bodyLimit(cfg),
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		AccessLog:   cfg.AccessLog,
		CORSOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:              handler.NewAuthHandler(authService, logger),
		CategoryHandler:          handler.NewCategoryHandler(categoryService, logger),
		StatusHandler:            handler.NewStatusHandler(statusService, logger),
		ComplaintHandler:         handler.NewComplaintHandler(complaintService, logger),
		ComplaintResponseHandler: handler.NewComplaintResponseHandler(responseService, logger),
		AdminUserHandler:         handler.NewAdminUserHandler(adminUserService, logger),
		AdminDashboardHandler:    handler.NewAdminDashboardHandler(dashboardService, logger),
		AdminActivityHandler:     handler.NewAdminActivityHandler(activityService, logger),
		SeedHandler:              handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:            middleware.JWTProtected(tokens, denylist, logger),
		AuthRateLimiter:          middleware.RateLimit("auth", cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func newFileStorage(cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	if cfg.StorageDriver == config.StorageCloudinary {
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	}
	return storage.NewLocal(cfg.StorageLocalPath, logger)
}

func newDenylist(client *redis.Client) auth.Denylist {
	if client == nil {
		return auth.NewMemoryDenylist()
	}
	return auth.NewRedisDenylist(client)
}

// bodyLimit leaves room for several attachments plus form fields.
func bodyLimit(cfg config.Config) int {
	limit := cfg.UploadMaxSizeKB * 1024 * 8
	if limit < fiber.DefaultBodyLimit {
		return fiber.DefaultBodyLimit
	}
	return limit
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
