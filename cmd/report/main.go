package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianbi/revenue-mart/internal/adapter"
	"github.com/meridianbi/revenue-mart/internal/attribution"
	"github.com/meridianbi/revenue-mart/internal/audit"
	"github.com/meridianbi/revenue-mart/internal/config"
	"github.com/meridianbi/revenue-mart/internal/domain"
	"github.com/meridianbi/revenue-mart/internal/logger"
	"github.com/meridianbi/revenue-mart/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	threshold  = flag.String("threshold", "10000", "Actual-amount threshold for the distinct-customer count")
	runAudit   = flag.Bool("audit", true, "Run the consistency audit after the reports")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReportConfig(*configFile, *envPath)
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
			"service": "report",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	runID := uuid.NewString()
	logger.InfoCtx(ctx, "Starting revenue report", zap.String("run_id", runID))

	limit, err := decimal.NewFromString(*threshold)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid threshold", zap.Error(err))
	}

	// Connect to database
	db, err := store.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	engine := attribution.NewEngine(db)
	clock := adapter.NewClock()
	todayKey := domain.NewDateKey(clock.Now())

	byTerritory, err := engine.RevenueByTerritoryQuarter(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to aggregate by territory", zap.Error(err))
	}
	fmt.Println("Revenue by territory and quarter:")
	territoryTable := tablewriter.NewTable(os.Stdout)
	territoryTable.Header([]string{"Territory", "Year", "Quarter", "Actual", "Forecast"})
	for _, row := range byTerritory {
		territoryTable.Append([]string{
			row.TerritoryName,
			fmt.Sprintf("%d", row.Year),
			fmt.Sprintf("Q%d", row.Quarter),
			row.TotalActual.StringFixed(2),
			row.TotalForecast.StringFixed(2),
		})
	}
	territoryTable.Render()

	byCustomer, err := engine.RevenueByCustomerQuarter(ctx)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to aggregate by customer", zap.Error(err))
	}
	fmt.Println("\nRevenue by customer and quarter:")
	customerTable := tablewriter.NewTable(os.Stdout)
	customerTable.Header([]string{"Customer", "Year", "Quarter", "Territory", "Actual", "Forecast"})
	for _, row := range byCustomer {
		customerTable.Append([]string{
			row.CustomerName,
			fmt.Sprintf("%d", row.Year),
			fmt.Sprintf("Q%d", row.Quarter),
			row.TerritoryName,
			row.TotalActual.StringFixed(2),
			row.TotalForecast.StringFixed(2),
		})
	}
	customerTable.Render()

	overLimit, err := engine.CountCustomersOverThreshold(ctx, limit)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to count customers over threshold", zap.Error(err))
	}
	fmt.Printf("\nCustomers with a single fact above %s: %d\n", limit.StringFixed(2), overLimit)

	expired, err := engine.ExpiredVersionsAsOf(ctx, todayKey)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to list expired versions", zap.Error(err))
	}
	fmt.Printf("\nExpired versions as of %s: %d territory, %d customer\n",
		todayKey, len(expired.Territories), len(expired.Customers))

	if *runAudit {
		dataStore := store.NewPGStore(db, cfg.Attribution.Policy)
		auditor := audit.NewAuditor(dataStore, cfg.Audit.WorkerPoolSize)
		report, err := auditor.Run(ctx)
		if err != nil {
			logger.FatalCtx(ctx, "Consistency audit failed", zap.Error(err))
		}
		if report.Clean() {
			fmt.Printf("\nConsistency audit %s: clean (%d entities)\n", report.RunID, report.EntitiesChecked)
		} else {
			fmt.Printf("\nConsistency audit %s: %d issue(s)\n", report.RunID, len(report.Issues))
			for _, issue := range report.Issues {
				fmt.Printf("  %s %s %s: %s\n", issue.Entity, issue.BusinessID, issue.Kind, issue.Detail)
			}
			os.Exit(1)
		}
	}
}
