package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/placement-cell/drive-api/internal/config"
	"github.com/placement-cell/drive-api/internal/database"
	"github.com/placement-cell/drive-api/internal/handler"
	"github.com/placement-cell/drive-api/internal/middleware"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/repository"
	"github.com/placement-cell/drive-api/internal/router"
	"github.com/placement-cell/drive-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Drive{},
		&models.Round{},
		&models.OfferLetter{},
		&models.CandidateProgressRecord{},
		&models.Candidate{},
		&models.JobProfile{},
		&models.TimelineEntry{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, drive events limited to redis stream")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	driveRepo := repository.NewDriveRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	profileRepo := repository.NewJobProfileRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)

	timelineService := service.NewTimelineService(timelineRepo, logger)
	events := service.NewDriveEventPublisher(natsConn, redisClient, cfg.EventChannelBase, logger)

	driveService := service.NewDriveService(driveRepo, candidateRepo, progressRepo, timelineService, validate, redisClient, cfg.RosterCacheTTL, logger)
	selectionService := service.NewSelectionService(driveRepo, candidateRepo, progressRepo, profileRepo, validate, redisClient, logger)
	resultService := service.NewResultService(driveRepo, candidateRepo, progressRepo, timelineService, events, validate, redisClient, logger)
	offerService := service.NewOfferService(driveRepo, candidateRepo, progressRepo, timelineService, events, validate, cfg.OfferValidity, logger)

	driveHandler := handler.NewDriveHandler(driveService, logger)
	roundHandler := handler.NewRoundHandler(selectionService, resultService, logger)
	offerHandler := handler.NewOfferHandler(offerService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DriveHandler:  driveHandler,
		RoundHandler:  roundHandler,
		OfferHandler:  offerHandler,
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
