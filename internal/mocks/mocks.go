// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateSource mocks the RateSource interface
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchDaily(ctx context.Context, day time.Time) ([]entity.Rate, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Rate), args.Error(1)
}

func (m *MockRateSource) FetchMonthly(ctx context.Context, symbol string, month time.Time) ([]entity.Rate, error) {
	args := m.Called(ctx, symbol, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Rate), args.Error(1)
}

// MockHistoryRepository mocks the HistoryRepository interface
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Load(ctx context.Context, symbol string) (entity.History, bool, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(entity.History), args.Bool(1), args.Error(2)
}

func (m *MockHistoryRepository) Replace(ctx context.Context, symbol string, history entity.History) error {
	args := m.Called(ctx, symbol, history)
	return args.Error(0)
}

// MockRegistryRepository mocks the RegistryRepository interface
type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) Exists() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRegistryRepository) Load(ctx context.Context) ([]entity.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Currency), args.Error(1)
}

func (m *MockRegistryRepository) Init(ctx context.Context, currencies []entity.Currency) error {
	args := m.Called(ctx, currencies)
	return args.Error(0)
}

// MockExportRepository mocks the ExportRepository interface
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) WriteLong(ctx context.Context, rows []entity.Rate) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockExportRepository) WriteWide(ctx context.Context, table *entity.WideTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

// FixedClock implements the Clock interface with a constant date for tests
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time {
	return c.Date
}
