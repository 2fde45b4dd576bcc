package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/medtalks/website/docs"
	"github.com/medtalks/website/internal/config"
	"github.com/medtalks/website/internal/flash"
	"github.com/medtalks/website/internal/handlers"
	"github.com/medtalks/website/internal/idempotency"
	"github.com/medtalks/website/internal/logger"
	"github.com/medtalks/website/internal/middleware"
	"github.com/medtalks/website/internal/notify"
	"github.com/medtalks/website/internal/repositories"
	"github.com/medtalks/website/internal/services"
	"github.com/medtalks/website/internal/store"
	"github.com/medtalks/website/internal/turnstile"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	flashMaxAge      = 5 * time.Minute
	compressionLevel = 5
)

// @title MedTalks Website API
// @version 1.0
// @description JSON API of the MedTalks website: newsletter, enrollments, partnership applications and blog posts
// @termsOfService http://swagger.io/terms/

// @contact.name MedTalks Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting MedTalks website", zap.String("store_driver", cfg.Store.Driver))

	// Open the document store; a store that cannot be opened degrades every read to empty results
	docStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer docStore.Close()

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(docStore)
	blogRepo := repositories.NewBlogRepository(docStore)
	teamRepo := repositories.NewTeamRepository(docStore)
	submissionRepo := repositories.NewSubmissionRepository(docStore)

	// Optional partnership notices
	var notifier services.PartnershipNotifier
	if cfg.SMTP.Configured() {
		notifier = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.NotifyTo,
		}, logger.Logger)
	}

	// Initialize services
	catalogService := services.NewCatalogService(courseRepo, logger.Logger)
	blogService := services.NewBlogService(blogRepo, logger.Logger)
	teamService := services.NewTeamService(teamRepo, logger.Logger)
	submissionService := services.NewSubmissionService(submissionRepo, logger.Logger)
	partnershipService := services.NewPartnershipService(submissionRepo, services.NewReferenceGenerator(), notifier, logger.Logger)

	// Bot verification and flash notices
	if cfg.Turnstile.SecretKey == "" {
		logger.Logger.Warn("TURNSTILE_SECRET_KEY is not set, protected forms will be rejected")
	}
	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Logger.Warn("SESSION_SECRET is not set, flash notices are signed with the default secret")
	}
	verifier := turnstile.New(cfg.Turnstile.SecretKey, cfg.Turnstile.VerifyURL)
	notices := flash.NewStore(cfg.SessionSecret, flashMaxAge, cfg.SecureCookies())

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(submissionService, partnershipService, blogService, logger.Logger)
	pageHandler := handlers.NewPageHandler(catalogService, blogService, teamService, submissionService, notices, handlers.PageConfig{
		Videos:           cfg.Videos.TemplateData(),
		TurnstileSiteKey: cfg.Turnstile.SiteKey,
	}, logger.Logger)

	guards := handlers.Guards{
		Verify: middleware.TurnstileMiddleware(verifier, notices, logger.Logger),
	}
	dedup, closeDedup := openIdempotencyStore(cfg)
	defer closeDedup()
	if dedup != nil {
		guards.Dedup = middleware.IdempotencyMiddleware(dedup, logger.Logger)
	}

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.MaxRequestSize))
	r.Use(middleware.CompressMiddleware(compressionLevel))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(cfg.Server.BaseURL+"/swagger/doc.json"),
	))

	// Register routes
	apiHandler.RegisterRoutes(r, guards)
	pageHandler.RegisterRoutes(r, guards)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// openStore selects the document store backend.
//
// Missing or unusable credentials yield a store whose operations all fail with store.ErrNotConfigured.
// Only an unknown driver is an error.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFirestore:
		if !cfg.Firestore.Configured() {
			logger.Logger.Warn("Firestore credentials are not set, data access is disabled")
			return store.NewUnconfigured(errors.New("firestore credentials are not set")), nil
		}
		fs, err := store.NewFirestoreStore(ctx, store.ServiceAccount{
			ProjectID:    cfg.Firestore.ProjectID,
			PrivateKeyID: cfg.Firestore.PrivateKeyID,
			PrivateKey:   cfg.Firestore.PrivateKey,
			ClientEmail:  cfg.Firestore.ClientEmail,
			ClientID:     cfg.Firestore.ClientID,
			AuthURI:      cfg.Firestore.AuthURI,
			TokenURI:     cfg.Firestore.TokenURI,
		})
		if err != nil {
			logger.Logger.Error("Failed to initialize Firestore, data access is disabled", zap.Error(err))
			return store.NewUnconfigured(err), nil
		}
		logger.Logger.Info("Firestore initialized", zap.String("project_id", cfg.Firestore.ProjectID))
		return fs, nil

	case config.StoreDriverMySQL:
		if !cfg.Database.Configured() {
			logger.Logger.Warn("Database settings are not set, data access is disabled")
			return store.NewUnconfigured(errors.New("database settings are not set")), nil
		}
		db, err := connectDB(cfg.DSN())
		if err != nil {
			logger.Logger.Error("Failed to connect to database, data access is disabled", zap.Error(err))
			return store.NewUnconfigured(err), nil
		}
		if err := runMigrations(db); err != nil {
			db.Close()
			logger.Logger.Error("Failed to run migrations, data access is disabled", zap.Error(err))
			return store.NewUnconfigured(err), nil
		}
		return store.NewMySQLStore(db), nil

	case config.StoreDriverMemory:
		logger.Logger.Warn("Using the in-memory document store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// openIdempotencyStore returns the duplicate-submission store, or nil when none is available.
//
// Redis is used when configured and reachable; the in-memory store backs single-process setups
// running on the in-memory document store.
func openIdempotencyStore(cfg *config.Config) (idempotency.Store, func()) {
	if cfg.Redis.Addr == "" {
		if cfg.Store.Driver == config.StoreDriverMemory {
			return idempotency.NewMemoryStore(cfg.Redis.PendingTTL, cfg.Redis.ResultTTL), func() {}
		}
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn("Redis is unreachable, duplicate submissions are not detected", zap.Error(err))
		client.Close()
		return nil, func() {}
	}

	logger.Logger.Info("Duplicate-submission guard enabled", zap.String("redis_addr", cfg.Redis.Addr))
	return idempotency.NewRedisStore(client, cfg.Redis.PendingTTL, cfg.Redis.ResultTTL), func() {
		client.Close()
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "site_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try the repository root if running from cmd/server
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
