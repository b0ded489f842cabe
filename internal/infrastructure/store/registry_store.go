// Package store internal/infrastructure/store/registry_store.go
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
)

// RegistryFileName is the currency registry file kept in the output directory.
const RegistryFileName = "currencies.csv"

// RegistryStore implements the RegistryRepository interface on a CSV file
// that operators edit to flag currencies for fetching
type RegistryStore struct {
	path   string
	logger logger.Logger
}

// NewRegistryStore creates a registry store backed by the given file
func NewRegistryStore(path string, log logger.Logger) *RegistryStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RegistryStore{
		path:   path,
		logger: log,
	}
}

// Path returns the registry file location
func (s *RegistryStore) Path() string {
	return s.path
}

// Exists reports whether the registry file is present
func (s *RegistryStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads all registry entries
func (s *RegistryStore) Load(ctx context.Context) ([]entity.Currency, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Warn("Error closing registry file", map[string]interface{}{
				"path":  s.path,
				"error": closeErr.Error(),
			})
		}
	}()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if len(records) == 0 {
		return []entity.Currency{}, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range []string{"symbol", "fetch", "country"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("registry is missing column %q", name)
		}
	}

	currencies := make([]entity.Currency, 0, len(records)-1)
	for _, record := range records[1:] {
		flag, err := strconv.Atoi(strings.TrimSpace(record[col["fetch"]]))
		if err != nil {
			return nil, fmt.Errorf("invalid fetch flag %q for %s: %w",
				record[col["fetch"]], record[col["symbol"]], err)
		}

		currency := entity.Currency{
			Symbol:  record[col["symbol"]],
			Fetch:   flag != 0,
			Country: record[col["country"]],
		}
		if err := currency.Validate(); err != nil {
			return nil, fmt.Errorf("invalid registry entry: %w", err)
		}

		currencies = append(currencies, currency)
	}

	return currencies, nil
}

// Init writes the initial registry from a bootstrap snapshot
func (s *RegistryStore) Init(ctx context.Context, currencies []entity.Currency) error {
	records := make([][]string, 0, len(currencies))
	for _, c := range currencies {
		flag := "0"
		if c.Fetch {
			flag = "1"
		}
		records = append(records, []string{c.Symbol, flag, c.Country})
	}

	if err := writeCSVAtomic(s.path, []string{"symbol", "fetch", "country"}, records); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	return nil
}
