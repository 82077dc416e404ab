package main

import (
	"context"
	"database/sql"
	"flag"
	"os/signal"
	"syscall"

	"app/internal/config"
	"app/internal/logger"
	"app/internal/orchestrator/scoring"
	"app/internal/orchestrator/stripesync"
	"app/internal/pgmq"
	"app/internal/repository"
	"app/internal/service"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "", "Orchestrator mode: scoring|stripesync")
	tenantSlug := flag.String("tenant", "", "Tenant slug (stripesync mode)")
	flag.Parse()

	// Initialize logger
	logger := logger.New()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// Initialize DB connection
	db, err := sql.Open("pgx", cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
	}
	logger.Info().Msg("Database connection established")

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	customerRepo := repository.NewCustomerRepo(db)
	predictionRepo := repository.NewPredictionRepo(db)
	tenantRepo := repository.NewTenantRepo(db)

	// Dispatch to the selected orchestrator
	var runErr error
	switch *mode {
	case "scoring":
		pgmqClient := pgmq.New(db, cfg.ScoringQueueName, cfg.ScoringDeadLetterQueueName)
		logger.Info().Msg("PGMQ client initialized")
		// The worker publishes no events itself; the scoring service logs the
		// outcome and the queue provides the audit trail.
		scoringSvc := service.NewScoringService(customerRepo, predictionRepo, nil, logger)
		runErr = scoring.Run(ctx, cfg, logger, pgmqClient, scoringSvc)
	case "stripesync":
		if *tenantSlug == "" {
			logger.Fatal().Msg("stripesync mode requires -tenant")
		}
		apiKey := cfg.StripeSecretKey
		if apiKey == "" {
			// Fall back to Secret Manager when the key is not in the environment.
			secrets, err := service.NewSecretManagerService(ctx, cfg)
			if err != nil {
				logger.Fatal().Msgf("Stripe key not configured and Secret Manager unavailable: %v", err)
			}
			apiKey, err = secrets.AccessSecret(ctx, cfg.StripeSecretName)
			secrets.Close()
			if err != nil {
				logger.Fatal().Msgf("Failed to fetch Stripe key from Secret Manager: %v", err)
			}
		}
		stripeSvc := service.NewStripeService(cfg, apiKey, customerRepo, logger)
		runErr = stripesync.Run(ctx, logger, tenantRepo, stripeSvc, *tenantSlug)
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("Orchestrator exited with error: %v", runErr)
	}
}
