package service

import (
	"context"
	"time"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
)

// RateSource defines the interface for the remote exchange rate source
type RateSource interface {
	// FetchDaily retrieves the full rate snapshot published for one day.
	FetchDaily(ctx context.Context, day time.Time) ([]entity.Rate, error)

	// FetchMonthly retrieves all daily rates of one currency for one
	// calendar month.
	FetchMonthly(ctx context.Context, symbol string, month time.Time) ([]entity.Rate, error)
}
