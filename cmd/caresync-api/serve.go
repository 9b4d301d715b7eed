package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caresync-api/internal/auth"
	"caresync-api/internal/config"
	"caresync-api/internal/database"
	"caresync-api/internal/email"
	"caresync-api/internal/export"
	"caresync-api/internal/http/handler"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/ratelimit"
	"caresync-api/internal/repo"
	"caresync-api/internal/service"
	"caresync-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the CareSync API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.OTELServiceName, "info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting caresync api",
		zap.String("version", "1.0.0"),
		zap.String("service", cfg.OTELServiceName),
	)

	// Run database migrations
	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Initialize telemetry strictly as opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
	}

	// Connect to database
	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	// Connect to Redis
	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	// Initialize JWT signing and validation (JWT_HS256_SECRET must be Base64-encoded)
	log.Info(ctx, "initializing JWT authentication")
	secretBytes, err := base64.StdEncoding.DecodeString(cfg.JWTHS256Secret)
	if err != nil {
		return fmt.Errorf("JWT_HS256_SECRET must be valid Base64-encoded: %w", err)
	}
	if len(secretBytes) < 32 {
		return fmt.Errorf("JWT_HS256_SECRET decoded bytes must be at least 32 bytes (256 bits), got %d bytes", len(secretBytes))
	}

	keyStore := auth.NewKeyStore()
	keyStore.LoadHS256Key("v1", secretBytes)

	clockSkew := time.Duration(cfg.JWTClockSkewSeconds) * time.Second
	validator := auth.NewHS256Validator(keyStore, cfg.JWTIssuer, clockSkew)
	issuer := auth.NewTokenIssuer(keyStore, cfg.JWTIssuer)

	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	// Outbound email: Gmail API when configured, log-only otherwise
	var mailer email.Mailer
	if cfg.GmailConfigured() {
		gmailMailer, err := email.NewGmailMailer(ctx, email.GmailConfig{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			Sender:       cfg.EmailSender,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize gmail mailer: %w", err)
		}
		mailer = gmailMailer
		log.Info(ctx, "gmail mailer initialized", zap.String("sender", cfg.EmailSender))
	} else {
		mailer = email.NewLogMailer(log)
		log.Warn(ctx, "gmail credentials not configured, using log-only mailer")
	}

	// PDF export storage. nil storage disables exports with a 502.
	var storage export.Storage
	if cfg.GCSBucket != "" {
		gcs, err := export.NewGCSStorage(ctx, cfg.GCSBucket)
		if err != nil {
			return fmt.Errorf("failed to initialize GCS storage: %w", err)
		}
		defer gcs.Close()
		storage = gcs
		log.Info(ctx, "gcs storage initialized", zap.String("bucket", cfg.GCSBucket))
	} else {
		log.Warn(ctx, "GCS_BUCKET not configured, PDF exports disabled")
	}

	// Initialize repositories
	idempotencyRepo := repo.NewIdempotencyRepo(pool)
	userRepo := repo.NewUserRepository(pool)
	clientRepo := repo.NewClientRepository(pool)
	shiftRepo := repo.NewShiftRepository(pool)

	// Initialize services
	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	userService := service.NewUserService(userRepo, clientRepo, issuer, validator, mailer, storage, cfg.AppBaseURL, sessionTTL, log)
	clientService := service.NewClientService(clientRepo, storage, log)
	careTeamService := service.NewCareTeamService(clientRepo, userRepo, shiftRepo, issuer, validator, mailer, cfg.AppBaseURL, log)
	shiftService := service.NewShiftService(shiftRepo, clientRepo, log)
	documentService := service.NewDocumentService(shiftRepo, clientRepo, userRepo, storage, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	careTeamHandler := handler.NewCareTeamHandler(careTeamService)
	shiftHandler := handler.NewShiftHandler(shiftService)
	documentHandler := handler.NewDocumentHandler(documentService)
	debugHandler := handler.NewDebugHandler(pool)

	// Initialize rate limiter
	var rateLimitCounter metric.Int64Counter
	if metrics != nil {
		rateLimitCounter = metrics.RateLimitRejections
	}
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)

	// Build router
	r := buildRouter(RouterDeps{
		Cfg:             cfg,
		Log:             log,
		Validator:       validator,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         metrics,
		Pool:            pool,
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		ClientHandler:   clientHandler,
		CareTeamHandler: careTeamHandler,
		ShiftHandler:    shiftHandler,
		DocumentHandler: documentHandler,
		DebugHandler:    debugHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
