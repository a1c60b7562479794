package main

//go:generate swag init -g main.go -d ./,../../internal -o ../docs

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/adapters/filestore"
	"github.com/SscSPs/agent_onboarding_portal/internal/adapters/messaging"
	"github.com/SscSPs/agent_onboarding_portal/internal/adapters/notification"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/services"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/workflow"
	"github.com/SscSPs/agent_onboarding_portal/internal/handlers"
	"github.com/SscSPs/agent_onboarding_portal/internal/middleware"
	"github.com/SscSPs/agent_onboarding_portal/internal/platform/config"
	"github.com/SscSPs/agent_onboarding_portal/internal/repositories/database/pgsql"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils"
	"github.com/SscSPs/agent_onboarding_portal/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Agent Onboarding Portal API
// @version 1.0
// @description Multi-tenant onboarding of banking agents: requests, review workflow, documents and deposits.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API token issued from /tokens.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	table, err := workflow.Default()
	if err != nil {
		logger.Error("Failed to load workflow table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	files, err := filestore.NewLocalStore(cfg.DocumentStorageDir, cfg.MaxUploadBytes)
	if err != nil {
		logger.Error("Failed to initialize document store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	sinks := []portssvc.NotificationSink{notification.NewLogSink(logger)}
	var kafkaSink *notification.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink = notification.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaNotificationTopic)
		sinks = append(sinks, kafkaSink)
	}
	if posthogClient.IsInitialized() {
		sinks = append(sinks, notification.NewPosthogSink(posthogClient))
	}
	dispatcher := notification.NewDispatcher(cfg.NotificationQueueSize, logger, sinks)
	dispatcher.Start()

	repos := pgsql.NewRepositoryProvider(dbPool)
	if _, err := services.EnsureSuperAdmin(ctx, repos.UserRepo, cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		logger.Error("Failed to bootstrap super admin", slog.String("error", err.Error()))
		os.Exit(1)
	}
	container := services.NewServiceContainer(cfg, repos, table, files, dispatcher)
	go runTokenSweeper(ctx, container.APIToken, time.Hour, logger)

	var consumer *messaging.DepositConsumer
	consumerDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 {
		consumer = messaging.NewDepositConsumer(cfg.KafkaBrokers, cfg.KafkaDepositTopic, cfg.KafkaConsumerGroup, container.Deposit, logger)
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				logger.Error("Deposit consumer stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(consumerDone)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	<-consumerDone
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("Failed to close deposit consumer", slog.String("error", err.Error()))
		}
	}
	// drain queued notifications before closing the sinks they go to
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("Notification dispatcher did not drain", slog.String("error", err.Error()))
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			logger.Error("Failed to close kafka writer", slog.String("error", err.Error()))
		}
	}
}

// runTokenSweeper purges expired API tokens every interval until ctx is done.
func runTokenSweeper(ctx context.Context, tokens portssvc.APITokenSvc, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := tokens.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.Error("API token sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrations applies every pending "up" migration through a temporary database/sql
// connection using the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return errors.Join(sourceErr, dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
