package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianbi/revenue-mart/internal/config"
	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/logger"
	"github.com/meridianbi/revenue-mart/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadLoaderConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "calendar-loader",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting calendar loader")

	startKey, err := domain.ParseDateKey(cfg.Calendar.StartDate)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid calendar.start_date", zap.Error(err))
	}
	endKey, err := domain.ParseDateKey(cfg.Calendar.EndDate)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid calendar.end_date", zap.Error(err))
	}

	// Connect to database
	db, err := store.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate schema", zap.Error(err))
	}

	dataStore := store.NewPGStore(db, domain.AttributionPolicyFixed)

	written, err := dataStore.PopulateDates(ctx, startKey.Time(), endKey.Time())
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			logger.FatalCtx(ctx, "Date registry already covers the requested range; narrow the range",
				zap.String("start", cfg.Calendar.StartDate),
				zap.String("end", cfg.Calendar.EndDate),
			)
		}
		logger.FatalCtx(ctx, "Failed to populate date registry", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Date registry populated",
		zap.String("start", cfg.Calendar.StartDate),
		zap.String("end", cfg.Calendar.EndDate),
		zap.Int("days", written),
	)
}
