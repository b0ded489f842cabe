package repository

import (
	"context"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
)

// RegistryRepository defines the interface for the currency registry file
type RegistryRepository interface {
	// Exists reports whether the registry has been written already.
	Exists() bool

	// Load reads all registry entries.
	Load(ctx context.Context) ([]entity.Currency, error)

	// Init writes the initial registry from a bootstrap snapshot.
	Init(ctx context.Context, currencies []entity.Currency) error
}
