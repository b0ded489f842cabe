package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damon-houk/ezv-rates/internal/domain/entity"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// HistoryStore implements the HistoryRepository interface on one CSV file
// per currency
type HistoryStore struct {
	dir       string
	overrides map[string]string
	logger    logger.Logger
}

// NewHistoryStore creates a store keeping <SYMBOL>.csv files in dir
func NewHistoryStore(dir string, log logger.Logger) *HistoryStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &HistoryStore{
		dir:       dir,
		overrides: make(map[string]string),
		logger:    log,
	}
}

// PathFor returns the store file used for a symbol
func (s *HistoryStore) PathFor(symbol string) string {
	if path, ok := s.overrides[strings.ToUpper(symbol)]; ok {
		return path
	}
	return filepath.Join(s.dir, strings.ToUpper(symbol)+".csv")
}

// Override pins a symbol to a custom store file instead of the derived path
func (s *HistoryStore) Override(symbol, path string) {
	s.overrides[strings.ToUpper(symbol)] = path
}

// Load reads the stored history for a symbol. The second return is false
// when no store file exists yet.
func (s *HistoryStore) Load(ctx context.Context, symbol string) (entity.History, bool, error) {
	path := s.PathFor(symbol)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open history file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Warn("Error closing history file", map[string]interface{}{
				"path":  path,
				"error": closeErr.Error(),
			})
		}
	}()

	history, err := readRates(f)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return history, true, nil
}

// Replace atomically overwrites the stored history for a symbol
func (s *HistoryStore) Replace(ctx context.Context, symbol string, history entity.History) error {
	path := s.PathFor(symbol)

	if err := writeCSVAtomic(path, rateHeader(history), rateRecords(history)); err != nil {
		return fmt.Errorf("failed to write history for %s: %w", symbol, err)
	}

	return nil
}

// readRates parses CSV rate rows. The country column is optional; stores
// only carry it while bootstrap-derived rows are still present.
func readRates(r io.Reader) (entity.History, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return entity.History{}, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"date", "symbol", "price", "currency"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	countryIdx, hasCountry := col["country"]

	var history entity.History
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse("2006-01-02", record[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", record[col["date"]], err)
		}

		price, err := decimal.NewFromString(record[col["price"]])
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", record[col["price"]], err)
		}

		rate := entity.Rate{
			Date:     date,
			Symbol:   record[col["symbol"]],
			Price:    price,
			Currency: record[col["currency"]],
		}
		if hasCountry {
			rate.Country = record[countryIdx]
		}

		history = append(history, rate)
	}

	return history, nil
}

// rateHeader includes the country column only when some row carries one
func rateHeader(rows []entity.Rate) []string {
	if ratesHaveCountry(rows) {
		return []string{"date", "symbol", "country", "price", "currency"}
	}
	return []string{"date", "symbol", "price", "currency"}
}

func rateRecords(rows []entity.Rate) [][]string {
	withCountry := ratesHaveCountry(rows)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.Date.Format("2006-01-02"), r.Symbol}
		if withCountry {
			record = append(record, r.Country)
		}
		record = append(record, r.Price.String(), r.Currency)
		records = append(records, record)
	}

	return records
}

func ratesHaveCountry(rows []entity.Rate) bool {
	for _, r := range rows {
		if r.Country != "" {
			return true
		}
	}
	return false
}
