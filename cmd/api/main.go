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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-code-advisor/internal/config"
	"github.com/noah-isme/gema-code-advisor/internal/database"
	"github.com/noah-isme/gema-code-advisor/internal/handler"
	"github.com/noah-isme/gema-code-advisor/internal/middleware"
	"github.com/noah-isme/gema-code-advisor/internal/models"
	"github.com/noah-isme/gema-code-advisor/internal/repository"
	"github.com/noah-isme/gema-code-advisor/internal/review"
	"github.com/noah-isme/gema-code-advisor/internal/router"
	"github.com/noah-isme/gema-code-advisor/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Problem{}, &models.Submission{}, &models.SecurityLog{}, &models.SuspiciousPattern{}); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	securityLogRepo := repository.NewSecurityLogRepository(db)
	patternRepo := repository.NewPatternRepository(db)

	patternService := service.NewPatternService(patternRepo, cfg.SecurityPatterns, redisClient, cfg.RedisChannel, validate, logger)
	if err := patternService.Load(ctx); err != nil {
		log.Fatalf("failed to load security patterns: %v", err)
	}
	patternService.Start(ctx)

	publisher := service.NewNATSSecurityPublisher(natsConn, cfg.NATSSubject)
	recorder := service.NewSubmissionRecorder(submissionRepo, securityLogRepo, publisher, cfg.RecorderTimeout, logger)
	synthesizer := review.NewSynthesizer(review.DefaultTitleTokens, nil)

	analysisService := service.NewAnalysisService(problemRepo, patternService, synthesizer, recorder, validate, logger)
	problemService := service.NewProblemService(problemRepo, validate, logger)
	historyService := service.NewHistoryService(submissionRepo, securityLogRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: handler.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AnalyzeHandler:    handler.NewAnalyzeHandler(analysisService, logger),
		ProblemHandler:    handler.NewProblemHandler(problemService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(historyService, logger),
		SecurityHandler:   handler.NewSecurityHandler(patternService, historyService, validate, logger),
		Patterns:          patternService,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		RateLimiter:       middleware.RateLimit("analyze", cfg.RateLimitMax, cfg.RateLimitWindow),
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
