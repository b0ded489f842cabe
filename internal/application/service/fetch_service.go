// Package service internal/application/service/fetch_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/ezv-rates/internal/apperrors"
	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/domain/repository"
	domainservice "github.com/damon-houk/ezv-rates/internal/domain/service"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/trace"
)

// minMonthRows is the minimum plausible row count for a closed month. The
// source publishes business days only, so a complete month carries roughly
// 20-23 rows; fewer than 18 means the response was truncated.
const minMonthRows = 18

// FetchService brings per-currency histories up to date against the remote
// rate source
type FetchService struct {
	source     domainservice.RateSource
	histories  repository.HistoryRepository
	clock      domainservice.Clock
	startMonth time.Time
	pause      time.Duration
	logger     logger.Logger
}

// NewFetchService creates a new fetch service. startMonth is the earliest
// month the source holds complete data for; pause is slept between monthly
// requests for the same currency.
func NewFetchService(source domainservice.RateSource, histories repository.HistoryRepository,
	clock domainservice.Clock, startMonth time.Time, pause time.Duration, log logger.Logger) *FetchService {
	if clock == nil {
		clock = domainservice.SystemClock{}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FetchService{
		source:     source,
		histories:  histories,
		clock:      clock,
		startMonth: startMonth,
		pause:      pause,
		logger:     log,
	}
}

// FetchCurrency retrieves every missing or possibly incomplete month for one
// currency and merges the results into its store, persisting after each month
// that yields new data so an aborted run keeps its progress.
func (s *FetchService) FetchCurrency(ctx context.Context, symbol string) (entity.History, error) {
	runID := trace.RunID(ctx)

	history, found, err := s.histories.Load(ctx, symbol)
	if err != nil {
		s.logger.Error("Failed to load stored history", map[string]interface{}{
			"run_id": runID,
			"symbol": symbol,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("failed to load history for %s: %w", symbol, err)
	}

	s.logger.Info("Updating currency history", map[string]interface{}{
		"run_id":      runID,
		"symbol":      symbol,
		"store_found": found,
		"stored_rows": len(history),
	})

	today := s.clock.Today()
	yesterday := today.AddDate(0, 0, -1)
	currentMonth := entity.MonthOf(today)

	// Months already on disk are final except the most recent one, which may
	// have been fetched while still in progress.
	storedMonths := history.Months()
	var latestStoredMonth time.Time
	for month := range storedMonths {
		if month.After(latestStoredMonth) {
			latestStoredMonth = month
		}
	}

	for month := s.startMonth; !month.After(currentMonth); month = month.AddDate(0, 1, 0) {
		if storedMonths[month] && !month.Equal(latestStoredMonth) {
			continue
		}

		if month.Equal(currentMonth) {
			if latest, ok := history.LatestDate(); ok && latest.Equal(yesterday) {
				s.logger.Debug("Current month already up to date", map[string]interface{}{
					"run_id": runID,
					"symbol": symbol,
					"latest": latest.Format("2006-01-02"),
				})
				continue
			}
		}

		s.logger.Debug("Fetching month", map[string]interface{}{
			"run_id": runID,
			"symbol": symbol,
			"month":  month.Format("2006-01"),
		})

		fetched, err := s.source.FetchMonthly(ctx, symbol, month)
		if err != nil {
			s.logger.Error("Failed to fetch month", map[string]interface{}{
				"run_id": runID,
				"symbol": symbol,
				"month":  month.Format("2006-01"),
				"error":  err.Error(),
			})
			return nil, fmt.Errorf("failed to fetch %s for %s: %w", month.Format("2006-01"), symbol, err)
		}

		pastMonth := month.Before(currentMonth)
		if pastMonth && len(fetched) < minMonthRows {
			s.logger.Error("Implausibly few rows for closed month", map[string]interface{}{
				"run_id": runID,
				"symbol": symbol,
				"month":  month.Format("2006-01"),
				"rows":   len(fetched),
			})
			return nil, fmt.Errorf("%w: %d rows for closed month %s of %s, expected at least %d",
				apperrors.ErrDataIntegrity, len(fetched), month.Format("2006-01"), symbol, minMonthRows)
		}

		merged := history.Merge(fetched)
		if merged.Equal(history) {
			s.logger.Debug("No new data for month", map[string]interface{}{
				"run_id": runID,
				"symbol": symbol,
				"month":  month.Format("2006-01"),
			})
			continue
		}

		if err := s.histories.Replace(ctx, symbol, merged); err != nil {
			s.logger.Error("Failed to persist merged history", map[string]interface{}{
				"run_id": runID,
				"symbol": symbol,
				"month":  month.Format("2006-01"),
				"error":  err.Error(),
			})
			return nil, fmt.Errorf("failed to persist history for %s: %w", symbol, err)
		}
		history = merged

		s.logger.Info("Merged month into history", map[string]interface{}{
			"run_id":       runID,
			"symbol":       symbol,
			"month":        month.Format("2006-01"),
			"fetched_rows": len(fetched),
			"total_rows":   len(history),
		})

		if pastMonth && s.pause > 0 {
			time.Sleep(s.pause)
		}
	}

	s.logger.Info("Currency history up to date", map[string]interface{}{
		"run_id": runID,
		"symbol": symbol,
		"rows":   len(history),
	})

	return history, nil
}
