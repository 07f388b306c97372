package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"codereview/docs"
	"codereview/internal/analysis"
	"codereview/internal/config"
	"codereview/internal/database"
	"codereview/internal/database/migration"
	handlers "codereview/internal/http/handler"
	"codereview/internal/http/middleware"
	"codereview/internal/logging"
	"codereview/internal/otel"
	"codereview/internal/repository"
	"codereview/internal/repository/memory"
	"codereview/internal/repository/postgres"
	"codereview/internal/service"
	"codereview/internal/storage"
	"codereview/internal/worker"
)

const shutdownTimeout = 30 * time.Second

// @title Code Review API
// @version 1.0
// @description Upload code files, poll analysis progress and fetch review results.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Logging, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Warn("continuing without tracing")
	}

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize session store")
	}

	objects, err := openStorage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	provider, err := analysis.New(cfg.Analysis)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize analysis provider")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	procMetrics, err := service.NewProcessorMetrics(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register processor metrics")
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}

	processor := service.NewProcessor(store, objects, provider,
		service.WithStageDelay(cfg.Analysis.StageDelay),
		service.WithProviderTimeout(cfg.Analysis.Timeout),
		service.WithLogger(log),
		service.WithMetrics(procMetrics),
	)
	pool := worker.NewPool(cfg.Worker.Concurrency, cfg.Worker.QueueSize, processor.ProcessSession, log)
	pool.Start()

	svc := service.NewAnalysisService(store, objects, pool, cfg.Upload, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.BodyLimit(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, store, svc, cfg.AppHost)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"event":    "server_started",
			"addr":     addr,
			"store":    cfg.StoreBackend,
			"storage":  cfg.StorageBackend,
			"provider": provider.Name(),
		}).Info("listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server stopped")
		}
	case <-ctx.Done():
		log.WithField("event", "shutdown_started").Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("worker pool shutdown")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("tracer shutdown")
		}
	}
	if db != nil {
		_ = db.Close()
	}
}

// openStore returns the session store selected by STORE_BACKEND. The *sql.DB
// is nil for the memory backend.
func openStore(ctx context.Context, cfg *config.AppConfig, log logrus.FieldLogger) (repository.Store, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewAnalysisPostgres(db), db, nil
	default:
		return nil, nil, errors.New("unknown STORE_BACKEND: " + cfg.StoreBackend)
	}
}

func openStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendMinIO:
		return storage.NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, errors.New("unknown STORAGE_BACKEND: " + cfg.StorageBackend)
	}
}
