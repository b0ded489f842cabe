// Package service internal/application/service/registry_service.go
package service

import (
	"context"
	"fmt"

	"github.com/damon-houk/ezv-rates/internal/apperrors"
	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/domain/repository"
	domainservice "github.com/damon-houk/ezv-rates/internal/domain/service"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/trace"
)

// RegistryService bootstraps the currency registry and selects the
// currencies a run should process
type RegistryService struct {
	source   domainservice.RateSource
	registry repository.RegistryRepository
	clock    domainservice.Clock
	logger   logger.Logger
}

// NewRegistryService creates a new registry service
func NewRegistryService(source domainservice.RateSource, registry repository.RegistryRepository,
	clock domainservice.Clock, log logger.Logger) *RegistryService {
	if clock == nil {
		clock = domainservice.SystemClock{}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RegistryService{
		source:   source,
		registry: registry,
		clock:    clock,
		logger:   log,
	}
}

// Ensure creates the registry from today's daily snapshot when it does not
// exist yet. Every discovered currency is flagged for fetching; operators
// edit the file afterwards to narrow the selection.
func (s *RegistryService) Ensure(ctx context.Context) error {
	if s.registry.Exists() {
		return nil
	}

	runID := trace.RunID(ctx)

	s.logger.Info("Bootstrapping currency registry", map[string]interface{}{
		"run_id": runID,
	})

	rows, err := s.source.FetchDaily(ctx, s.clock.Today())
	if err != nil {
		s.logger.Error("Failed to fetch daily snapshot", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to fetch daily snapshot: %w", err)
	}

	currencies := make([]entity.Currency, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, entity.Currency{
			Symbol:  row.Symbol,
			Fetch:   true,
			Country: row.Country,
		})
	}

	if err := s.registry.Init(ctx, currencies); err != nil {
		s.logger.Error("Failed to write registry", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return fmt.Errorf("failed to write registry: %w", err)
	}

	s.logger.Info("Currency registry created", map[string]interface{}{
		"run_id":     runID,
		"currencies": len(currencies),
	})

	return nil
}

// Select returns the symbols to process: every flagged currency, or every
// registered currency when all is set.
func (s *RegistryService) Select(ctx context.Context, all bool) ([]string, error) {
	currencies, err := s.registry.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load registry", map[string]interface{}{
			"run_id": trace.RunID(ctx),
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	symbols := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if all || c.Fetch {
			symbols = append(symbols, c.Symbol)
		}
	}

	if !all && len(symbols) == 0 {
		return nil, apperrors.ErrNoCurrencyFlagged
	}

	s.logger.Info("Selected currencies", map[string]interface{}{
		"run_id":  trace.RunID(ctx),
		"count":   len(symbols),
		"all":     all,
		"symbols": symbols,
	})

	return symbols, nil
}
