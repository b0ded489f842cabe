// Package service internal/application/service/consolidation_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/domain/repository"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/trace"
	"github.com/shopspring/decimal"
)

// ConsolidationService rebuilds the long- and wide-format exports from the
// per-currency stores
type ConsolidationService struct {
	registry  repository.RegistryRepository
	histories repository.HistoryRepository
	exports   repository.ExportRepository
	logger    logger.Logger
}

// NewConsolidationService creates a new consolidation service
func NewConsolidationService(registry repository.RegistryRepository, histories repository.HistoryRepository,
	exports repository.ExportRepository, log logger.Logger) *ConsolidationService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConsolidationService{
		registry:  registry,
		histories: histories,
		exports:   exports,
		logger:    log,
	}
}

// Consolidate loads every registered currency's store, concatenates them
// into the long export and pivots that into the wide export. Registered
// currencies without a store file yet are skipped.
func (s *ConsolidationService) Consolidate(ctx context.Context) error {
	runID := trace.RunID(ctx)

	currencies, err := s.registry.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load registry", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var rows []entity.Rate
	loaded := 0
	for _, c := range currencies {
		history, found, err := s.histories.Load(ctx, c.Symbol)
		if err != nil {
			s.logger.Error("Failed to load currency store", map[string]interface{}{
				"run_id": runID,
				"symbol": c.Symbol,
				"error":  err.Error(),
			})
			return fmt.Errorf("failed to load history for %s: %w", c.Symbol, err)
		}
		if !found {
			s.logger.Debug("No store for currency yet, skipping", map[string]interface{}{
				"run_id": runID,
				"symbol": c.Symbol,
			})
			continue
		}

		loaded++
		rows = append(rows, history...)
	}

	if loaded == 0 {
		return errors.New("no currency stores found, nothing to consolidate")
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	if err := s.exports.WriteLong(ctx, rows); err != nil {
		s.logger.Error("Failed to write long export", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to write long export: %w", err)
	}

	table := entity.PivotWide(rows)
	table.SetConstant(entity.HomeCurrency, decimal.NewFromInt(1))
	if !table.DeriveScaled("GBX", "GBP", decimal.NewFromInt(100)) {
		s.logger.Warn("No GBP history, skipping GBX column", map[string]interface{}{
			"run_id": runID,
		})
	}

	if err := s.exports.WriteWide(ctx, table); err != nil {
		s.logger.Error("Failed to write wide export", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to write wide export: %w", err)
	}

	s.logger.Info("Exports rebuilt", map[string]interface{}{
		"run_id":     runID,
		"currencies": loaded,
		"rows":       len(rows),
	})

	return nil
}
