package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sportsdesk/cricketwire/internal/app"
	"github.com/sportsdesk/cricketwire/internal/config"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build collector", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	runDate := strings.TrimSpace(os.Getenv("RUN_DATE"))
	if runDate == "" {
		runDate = time.Now().UTC().Format("20060102")
	}

	report, err := application.Collector.Run(ctx, usecase.RunInput{
		RunDate:    runDate,
		MaxWorkers: application.MaxWorkers,
		Criteria:   application.Criteria,
	})
	if err != nil {
		logger.ErrorContext(ctx, "collection run failed", "run_date", runDate, "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "collection run finished",
		"run_date", runDate,
		"selected", report.Selected,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
