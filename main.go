package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"festival-registration-system/config"
	"festival-registration-system/handlers"
	"festival-registration-system/models"
	"festival-registration-system/services"
	"festival-registration-system/storage"
	"festival-registration-system/workers"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.EventContact{},
		&models.Registration{},
		&models.TeamMember{},
		&models.DownloadEvent{},
		&models.ContactMessage{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var artifacts storage.Store
	var localStore *storage.LocalStore
	switch cfg.StorageDriver {
	case config.StorageDriverR2:
		artifacts, err = storage.NewR2Store(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize R2 store")
		}
	default:
		localStore, err = storage.NewLocalStore(cfg.LocalStorageDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize local store")
		}
		artifacts = localStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	downloadTracker := workers.NewDownloadTracker(db, log)
	go downloadTracker.Start(ctx)

	eventService := services.NewEventService(db, log)
	identity := services.NewIdentityGenerator(db, cfg.IdentityPrefix)
	tickets := services.NewTicketRenderer(cfg.FestivalName, cfg.TicketLogoPath)
	registrationService := services.NewRegistrationService(
		db, eventService, identity, tickets, artifacts, downloadTracker, log, cfg.ArtifactTimeout)
	adminService := services.NewAdminService(db, log)
	adminService.StartStatsScheduler()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // registrations are small JSON payloads
	})

	allowedOrigins := make([]string, 0)
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupRegistrationRoutes(app, registrationService)
	handlers.SetupAdminRoutes(app, cfg.AdminToken, eventService, registrationService, adminService)

	if localStore != nil {
		app.Static("/files", localStore.Dir())
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.StorageDriver).
		Msg("festival registration service running")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
