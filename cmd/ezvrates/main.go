package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/damon-houk/ezv-rates/internal/apperrors"
	"github.com/damon-houk/ezv-rates/internal/application/service"
	domainservice "github.com/damon-houk/ezv-rates/internal/domain/service"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/api"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/config"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/store"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/trace"
)

func main() {
	all := flag.Bool("all", false, "fetch every registered currency regardless of its fetch flag")
	flag.Parse()

	if err := run(*all); err != nil {
		if errors.Is(err, apperrors.ErrNoCurrencyFlagged) {
			fmt.Fprintf(os.Stderr, "No currency is flagged for fetching. Set fetch to 1 in %s or rerun with --all.\n",
				store.RegistryFileName)
		} else {
			fmt.Fprintf(os.Stderr, "ezvrates: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(all bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.NewJSONLogger(os.Stdout, level)
	logger.SetDefaultLogger(log)

	// Every log line of a run carries the same run ID
	ctx := trace.WithRunID(context.Background(), trace.NewRunID())

	log.Info("Starting rate acquisition", map[string]interface{}{
		"run_id":     trace.RunID(ctx),
		"output_dir": cfg.OutputDir,
		"base_url":   cfg.BaseURL,
		"all":        all,
	})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Initialize the rate source client
	client := api.NewEZVClient(cfg.BaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)

	// Initialize stores
	histories := store.NewHistoryStore(cfg.OutputDir, log)
	registry := store.NewRegistryStore(filepath.Join(cfg.OutputDir, store.RegistryFileName), log)
	exports := store.NewExportStore(cfg.OutputDir, log)

	// Initialize services
	clock := domainservice.SystemClock{}
	registryService := service.NewRegistryService(client, registry, clock, log)
	fetchService := service.NewFetchService(client, histories, clock, cfg.StartMonth, cfg.FetchPause, log)
	consolidationService := service.NewConsolidationService(registry, histories, exports, log)

	if err := registryService.Ensure(ctx); err != nil {
		return err
	}

	symbols, err := registryService.Select(ctx, all)
	if err != nil {
		return err
	}

	for _, symbol := range symbols {
		if _, err := fetchService.FetchCurrency(ctx, symbol); err != nil {
			return err
		}
	}

	return consolidationService.Consolidate(ctx)
}
