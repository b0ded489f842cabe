package repository

import (
	"context"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
)

// ExportRepository defines the interface for the consolidated export files
type ExportRepository interface {
	// WriteLong fully overwrites the long-format export with the given rows.
	WriteLong(ctx context.Context, rows []entity.Rate) error

	// WriteWide fully overwrites the wide-format export.
	WriteWide(ctx context.Context, table *entity.WideTable) error
}
