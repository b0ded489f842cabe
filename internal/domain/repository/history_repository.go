// Package repository internal/domain/repository/history_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
)

// HistoryRepository defines the interface for per-currency rate history storage
type HistoryRepository interface {
	// Load reads the stored history for a symbol. The second return is
	// false when no store exists for that symbol yet.
	Load(ctx context.Context, symbol string) (entity.History, bool, error)

	// Replace atomically overwrites the stored history for a symbol.
	Replace(ctx context.Context, symbol string, history entity.History) error
}
