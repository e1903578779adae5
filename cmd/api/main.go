package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/llamasearchai/opennode-scan/internal/application"
	appadvisory "github.com/llamasearchai/opennode-scan/internal/application/advisory"
	appreports "github.com/llamasearchai/opennode-scan/internal/application/reports"
	"github.com/llamasearchai/opennode-scan/internal/config"
	"github.com/llamasearchai/opennode-scan/internal/engine"
	domadvisory "github.com/llamasearchai/opennode-scan/internal/domain/advisory"
	domreports "github.com/llamasearchai/opennode-scan/internal/domain/reports"
	aiclient "github.com/llamasearchai/opennode-scan/internal/infra/ai/openai"
	mysqlp "github.com/llamasearchai/opennode-scan/internal/infra/db/mysql"
	postgresp "github.com/llamasearchai/opennode-scan/internal/infra/db/postgres"
	"github.com/llamasearchai/opennode-scan/internal/infra/httpserver"
	minioStore "github.com/llamasearchai/opennode-scan/internal/infra/storage"
	"github.com/llamasearchai/opennode-scan/internal/logging"
	"github.com/llamasearchai/opennode-scan/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database; driver comes from config
	var db *sql.DB
	var reportRepo domreports.Repository
	var warningRepo domreports.WarningRepository
	var advisoryRepo domadvisory.Repository
	switch cfg.Database.Driver {
	case "", "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		reportRepo = mysqlp.NewReportRepository(db)
		warningRepo = mysqlp.NewWarningRepository(db)
		advisoryRepo = mysqlp.NewAdvisoryRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		reportRepo = postgresp.NewReportRepository(db)
		warningRepo = postgresp.NewWarningRepository(db)
		advisoryRepo = postgresp.NewAdvisoryRepository(db)
	default:
		logger.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	defer db.Close()

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	scanner, err := buildScanner(cfg)
	if err != nil {
		logger.Fatal("scanner init error", zap.Error(err))
	}

	reportsSvc := &appreports.Service{
		Repo:      reportRepo,
		Warnings:  warningRepo,
		Artifacts: store,
		Scanner:   scanner,
		Clock:     application.SystemClock{},
	}

	// advisory backend is optional; without an API key the endpoints
	// answer 503
	var advisorySvc *appadvisory.Service
	if cfg.OpenAI.APIKey != "" {
		client := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		advisorySvc = appadvisory.NewService(client, advisoryRepo)
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.MetricsMiddleware)
	if capacity := cfg.Server.RateLimit.Capacity; capacity > 0 {
		refill := cfg.Server.RateLimit.RefillRate
		if refill <= 0 {
			refill = 1
		}
		mux.Use(middleware.RateLimitMiddleware(capacity, refill))
	}
	if len(cfg.Server.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	}

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(reportsSvc, advisorySvc, logger))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func buildScanner(cfg *config.Config) (*engine.Scanner, error) {
	// reject bad standard names at the config boundary, before the engine
	// reports them as a generic construction error
	if err := middleware.ValidateStandards(cfg.Scan.Standards); err != nil {
		return nil, err
	}

	opts := engine.DefaultOptions()
	if cfg.Scan.Workers > 0 {
		opts.Workers = cfg.Scan.Workers
	}
	if cfg.Scan.SeverityThreshold != "" {
		sev, err := engine.ParseSeverity(cfg.Scan.SeverityThreshold)
		if err != nil {
			return nil, err
		}
		opts.SeverityThreshold = sev
	}
	if len(cfg.Scan.Standards) > 0 {
		opts.ComplianceStandards = cfg.Scan.Standards
	}
	opts.ExcludePatterns = cfg.Scan.Exclude
	opts.EnableAudit = cfg.Scan.EnableAudit
	if w := cfg.Scan.Weights; w.Critical > 0 || w.High > 0 || w.Medium > 0 || w.Low > 0 {
		opts.Weights = engine.Weights{
			Critical: w.Critical,
			High:     w.High,
			Medium:   w.Medium,
			Low:      w.Low,
		}
	}
	if cfg.Scan.RulesFile != "" {
		rules, err := engine.LoadRulesFile(cfg.Scan.RulesFile)
		if err != nil {
			return nil, err
		}
		opts.CustomRules = rules
	}
	return engine.New(opts)
}
