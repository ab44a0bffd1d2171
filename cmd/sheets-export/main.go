// Command sheets-export writes one budget period's category report to a
// Google Sheets spreadsheet and exits.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/export/google"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/session"
)

func main() {
	_ = godotenv.Load()

	logger := log.NewFromEnv(log.ComponentExport)
	log.SetDefault(logger)

	fromFlag := flag.String("from", "", "period start (YYYY-MM-DD); defaults to the current budget period")
	toFlag := flag.String("to", "", "period end (YYYY-MM-DD)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.ExportEnabled() {
		logger.Error("Export not configured, set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Backend configuration failed", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateStore(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := session.Load(ctx, result.Store)
	if err != nil {
		logger.Error("Failed to load session snapshot", "error", err)
		os.Exit(1)
	}
	svc := services.NewLedgerService(store, result.Store, nil)

	period := svc.CurrentPeriod()
	if *fromFlag != "" || *toFlag != "" {
		period, err = parsePeriod(*fromFlag, *toFlag)
		if err != nil {
			logger.Error("Invalid period flags", "error", err, "from", *fromFlag, "to", *toFlag)
			os.Exit(1)
		}
	}

	report := export.BuildMonthlyReport(
		svc.CategorySpendStatuses(period),
		svc.TotalSpendStatus(period),
		period,
		svc.HealthScore(),
		time.Now(),
	)

	writer, err := google.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Sheets client", "error", err)
		os.Exit(1)
	}

	ref, err := writer.Write(ctx, report)
	if err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Export complete",
		"range", ref,
		"rows", len(report.Rows),
		"period_start", period.Start.Format("2006-01-02"),
		"period_end", period.End.Format("2006-01-02"))
}

func parsePeriod(from, to string) (core.Period, error) {
	if from == "" || to == "" {
		return core.Period{}, core.ErrInvalidPeriod
	}
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return core.Period{}, core.ErrInvalidDate
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return core.Period{}, core.ErrInvalidDate
	}
	if end.Before(start) {
		return core.Period{}, core.ErrInvalidPeriod
	}
	return core.NewPeriod(core.DateOf(start), core.DateOf(end)), nil
}
