package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
)

// Consolidated export file names, kept in the output directory.
const (
	LongExportName = "ezv.long.csv"
	WideExportName = "ezv.wide.csv"
)

// ExportStore implements the ExportRepository interface with the two
// consolidated CSV exports
type ExportStore struct {
	dir    string
	logger logger.Logger
}

// NewExportStore creates an export store writing into dir
func NewExportStore(dir string, log logger.Logger) *ExportStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExportStore{
		dir:    dir,
		logger: log,
	}
}

// LongPath returns the long-format export location
func (s *ExportStore) LongPath() string {
	return filepath.Join(s.dir, LongExportName)
}

// WidePath returns the wide-format export location
func (s *ExportStore) WidePath() string {
	return filepath.Join(s.dir, WideExportName)
}

// WriteLong fully overwrites the long-format export with the given rows
func (s *ExportStore) WriteLong(ctx context.Context, rows []entity.Rate) error {
	if err := writeCSVAtomic(s.LongPath(), rateHeader(rows), rateRecords(rows)); err != nil {
		return fmt.Errorf("failed to write long export: %w", err)
	}

	return nil
}

// WriteWide fully overwrites the wide-format export. Empty cells are left
// blank.
func (s *ExportStore) WriteWide(ctx context.Context, table *entity.WideTable) error {
	header := append([]string{"date"}, table.Columns()...)

	records := make([][]string, 0, len(table.Dates()))
	for _, date := range table.Dates() {
		record := make([]string, 0, len(header))
		record = append(record, date.Format("2006-01-02"))
		for _, column := range table.Columns() {
			if value, ok := table.Value(date, column); ok {
				record = append(record, value.String())
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}

	if err := writeCSVAtomic(s.WidePath(), header, records); err != nil {
		return fmt.Errorf("failed to write wide export: %w", err)
	}

	return nil
}
