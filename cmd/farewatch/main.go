package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"farewatch/internal/checker"
	"farewatch/internal/config"
	"farewatch/internal/logging"
	"farewatch/internal/notify"
	"farewatch/internal/registry"
	"farewatch/internal/search"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Printf("cannot load config: %v", err)
		return 1
	}

	logger := logging.New(cfg.Log, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return 1
	}

	notifier, err := notify.New(cfg.Notifier, logger)
	if err != nil {
		logger.Error("Failed to create notifier", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, &cfg, logger, notifier)
}

// execute runs one check and returns the process exit code. An unexpected
// failure is reported through the notifier before exiting non-zero.
func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notify.Notifier) int {
	if err := check(ctx, cfg, logger, notifier); err != nil {
		logger.Error("Fare check failed", "error", err)
		// The run context may already be cancelled; the failure report still goes out.
		if nerr := notifier.NotifyFailure(context.WithoutCancel(ctx), err); nerr != nil {
			logger.Error("Failed to send failure notification", "error", nerr)
		}
		return 1
	}
	return 0
}

func check(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notify.Notifier) error {
	reg, closeRegistry, err := registry.New(ctx, *cfg, logger)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer closeRegistry()

	client := search.NewClient(cfg.Search, logger)
	report, err := checker.New(logger, reg, client, cfg).Run(ctx)
	if err != nil {
		return err
	}

	deliver(ctx, cfg, logger, notifier, report)
	return nil
}

// deliver sends the run outcome. Delivery failures are logged and do not
// fail the run.
func deliver(ctx context.Context, cfg *config.Config, logger *slog.Logger, notifier notify.Notifier, report checker.Report) {
	if len(report.Deals) > 0 {
		if err := notifier.NotifyDeals(ctx, report.Deals); err != nil {
			logger.Error("Failed to deliver deals", "deals", len(report.Deals), "error", err)
		}
	} else {
		logger.Info("No cheaper fare this time")
	}

	if cfg.Notifier.SendSummary {
		if err := notifier.NotifySummary(ctx, report.Summary()); err != nil {
			logger.Error("Failed to deliver summary", "error", err)
		}
	}
}
