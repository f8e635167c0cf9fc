package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/backend"
	"clinic-console/internal/adapters/cache"
	"clinic-console/internal/adapters/http/handlers"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/routes"
	"clinic-console/internal/adapters/persistence/models"
	"clinic-console/internal/adapters/persistence/repositories"
	"clinic-console/internal/config"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/preview"
	"clinic-console/internal/core/services"
	"clinic-console/internal/pkg/logger"
	"clinic-console/internal/pkg/seal"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "clinic-console")
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	divisions, err := loadDivisions(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to load administrative divisions", zap.Error(err))
	}
	defer config.CloseDatabase()

	snapshots := newSnapshotStore(ctx, cfg, zlog)

	previews := preview.NewStore(cfg.Preview.MaxBytes)
	cronService, err := services.NewCronService(previews, cfg.Preview.TTL, cfg.Preview.SweepSpec, zlog)
	if err != nil {
		zlog.Fatal("failed to schedule preview sweep", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	deps := &handlers.Deps{
		Config: cfg,
		Client: backend.New(backend.Config{
			APIURL:         cfg.Backend.APIURL,
			FileUploadsURL: cfg.Backend.FileUploadsURL,
			Timeout:        cfg.Backend.Timeout,
		}, zlog),
		Cookies:   middleware.NewSessionCookies(cfg, seal.New(cfg.Session.Secret)),
		Previews:  previews,
		Snapshots: snapshots,
		Directory: address.NewIndex(divisions),
		Logger:    zlog,
	}

	app := routes.NewApp(deps)

	// Graceful shutdown
	go gracefulShutdown(app, zlog)

	zlog.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("mode", cfg.AppMode),
		zap.String("api_url", cfg.Backend.APIURL),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// loadDivisions returns the division dataset. DIVISIONS_FILE replaces the
// embedded sample with a full export. With the division database enabled the
// dataset seeds it once and the tables are read back, so operators can correct
// names in MySQL.
func loadDivisions(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (address.Dataset, error) {
	source, err := divisionSource(cfg, zlog)
	if err != nil {
		return address.Dataset{}, err
	}
	if !cfg.Database.Enabled {
		return source, nil
	}

	db, err := config.ConnectDatabase(cfg, zlog)
	if err != nil {
		return address.Dataset{}, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return address.Dataset{}, err
	}

	repo := repositories.NewDivisionRepository(db)
	if err := config.NewSeeder(repo, zlog).Run(ctx, source); err != nil {
		return address.Dataset{}, err
	}
	return repo.LoadDataset(ctx)
}

func divisionSource(cfg *config.Config, zlog *zap.Logger) (address.Dataset, error) {
	if cfg.Database.DivisionsFile == "" {
		zlog.Warn("using the embedded sample division dataset, set DIVISIONS_FILE for the full PSGC list")
		return address.EmbeddedDataset()
	}
	ds, err := address.LoadDataset(cfg.Database.DivisionsFile)
	if err != nil {
		return address.Dataset{}, err
	}
	zlog.Info("division dataset loaded",
		zap.String("file", cfg.Database.DivisionsFile),
		zap.Int("provinces", len(ds.Provinces)),
		zap.Int("municipalities", len(ds.Municipalities)),
		zap.Int("barangays", len(ds.Barangays)),
	)
	return ds, nil
}

// newSnapshotStore uses Redis when REDIS_ADDR is set and reachable
func newSnapshotStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) cache.SnapshotStore {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryStore(cfg.Session.MaxAge)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zlog.Warn("redis unavailable, keeping list snapshots in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return cache.NewMemoryStore(cfg.Session.MaxAge)
	}

	zlog.Info("list snapshots stored in redis", zap.String("addr", cfg.Redis.Addr))
	return cache.NewRedisStore(client, cfg.Session.MaxAge)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server stopped gracefully")
}
