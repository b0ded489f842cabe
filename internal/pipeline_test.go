package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/ezv-rates/internal/apperrors"
	"github.com/damon-houk/ezv-rates/internal/application/service"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/api"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/logger"
	"github.com/damon-houk/ezv-rates/internal/infrastructure/store"
	"github.com/damon-houk/ezv-rates/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEZV serves EZV-shaped XML documents for a configurable set of months
// and records every query it answers.
type fakeEZV struct {
	mu       sync.Mutex
	daily    string
	monthly  map[string]string
	requests []string
}

func (f *fakeEZV) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		q := r.URL.Query()
		switch q.Get("activeSearchType") {
		case "userDefinedDay":
			f.requests = append(f.requests, "daily "+q.Get("d"))
			fmt.Fprint(w, f.daily)
		case "month":
			key := q.Get("d") + " " + q.Get("w")
			f.requests = append(f.requests, "month "+key)
			fmt.Fprint(w, f.monthly[key])
		default:
			http.Error(w, "unknown search type", http.StatusBadRequest)
		}
	}
}

func (f *fakeEZV) setMonth(symbol, label string, year int, month time.Month, days int, raw func(day int) string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := fmt.Sprintf("%d%02d %s", year, int(month), symbol)
	f.monthly[key] = monthlyDoc(label, year, month, days, raw)
}

func (f *fakeEZV) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func monthlyDoc(label string, year int, month time.Month, days int, raw func(day int) string) string {
	var b strings.Builder
	b.WriteString(`<kurse xmlns="https://www.backend-rates.ezv.admin.ch">`)
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		fmt.Fprintf(&b, "<kurs><waehrung>%s</waehrung><datum>%s</datum><wert>%s</wert></kurs>", label, date, raw(day))
	}
	b.WriteString("</kurse>")
	return b.String()
}

func dailyDoc(date string) string {
	return `<wechselkurse xmlns="https://www.backend-rates.ezv.admin.ch"><datum>` + date + `</datum>` +
		`<devise code="usd"><waehrung>1 USD</waehrung><kurs>1.0501</kurs><land_en>United States</land_en></devise>` +
		`<devise code="gbp"><waehrung>1 GBP</waehrung><kurs>1.7601</kurs><land_en>United Kingdom</land_en></devise>` +
		`<devise code="jpy"><waehrung>100 JPY</waehrung><kurs>0.7501</kurs><land_en>Japan</land_en></devise>` +
		`</wechselkurse>`
}

// pipeline wires the real client, stores and services against a fake source
type pipeline struct {
	dir           string
	ezv           *fakeEZV
	histories     *store.HistoryStore
	registry      *store.RegistryStore
	registrySvc   *service.RegistryService
	fetchSvc      *service.FetchService
	consolidation *service.ConsolidationService
}

func newPipeline(t *testing.T, today time.Time) *pipeline {
	t.Helper()

	dir := t.TempDir()
	ezv := &fakeEZV{monthly: make(map[string]string)}
	server := httptest.NewServer(ezv.handler())
	t.Cleanup(server.Close)

	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	client := api.NewEZVClient(server.URL, server.Client(), log)
	clock := mocks.FixedClock{Date: today}

	histories := store.NewHistoryStore(dir, log)
	registry := store.NewRegistryStore(filepath.Join(dir, store.RegistryFileName), log)
	exports := store.NewExportStore(dir, log)

	start := time.Date(2010, time.July, 1, 0, 0, 0, 0, time.UTC)

	return &pipeline{
		dir:           dir,
		ezv:           ezv,
		histories:     histories,
		registry:      registry,
		registrySvc:   service.NewRegistryService(client, registry, clock, log),
		fetchSvc:      service.NewFetchService(client, histories, clock, start, 0, log),
		consolidation: service.NewConsolidationService(registry, histories, exports, log),
	}
}

func (p *pipeline) run(t *testing.T, all bool) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, p.registrySvc.Ensure(ctx))

	symbols, err := p.registrySvc.Select(ctx, all)
	require.NoError(t, err)

	for _, symbol := range symbols {
		_, err := p.fetchSvc.FetchCurrency(ctx, symbol)
		require.NoError(t, err)
	}

	require.NoError(t, p.consolidation.Consolidate(ctx))
}

func TestAcquisitionPipeline(t *testing.T) {
	today := time.Date(2010, time.September, 20, 0, 0, 0, 0, time.UTC)
	p := newPipeline(t, today)
	ctx := context.Background()

	usdRate := func(day int) string { return fmt.Sprintf("1.%04d", 500+day) }
	gbpRate := func(day int) string { return fmt.Sprintf("1.%04d", 7600+day) }
	jpyRate := func(day int) string { return fmt.Sprintf("0.%04d", 7500+day) }

	p.ezv.daily = dailyDoc("2010-09-20")
	for _, m := range []struct {
		month time.Month
		days  int
	}{
		{time.July, 22},
		{time.August, 21},
		{time.September, 12},
	} {
		p.ezv.setMonth("usd", "1 USD", 2010, m.month, m.days, usdRate)
		p.ezv.setMonth("gbp", "1 GBP", 2010, m.month, m.days, gbpRate)
		p.ezv.setMonth("jpy", "100 JPY", 2010, m.month, m.days, jpyRate)
	}

	p.run(t, false)

	// One bootstrap snapshot, then three months per currency in registry order
	assert.Equal(t, []string{
		"daily 20100920",
		"month 201007 usd", "month 201008 usd", "month 201009 usd",
		"month 201007 gbp", "month 201008 gbp", "month 201009 gbp",
		"month 201007 jpy", "month 201008 jpy", "month 201009 jpy",
	}, p.ezv.seen())

	// The registry was bootstrapped with every discovered currency flagged
	currencies, err := p.registry.Load(ctx)
	require.NoError(t, err)
	require.Len(t, currencies, 3)
	for _, c := range currencies {
		assert.True(t, c.Fetch, "bootstrap should flag %s", c.Symbol)
	}

	usd, found, err := p.histories.Load(ctx, "USD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, usd, 22+21+12)

	months := usd.Months()
	assert.Len(t, months, 3)
	assert.True(t, months[time.Date(2010, time.July, 1, 0, 0, 0, 0, time.UTC)])
	assert.True(t, months[time.Date(2010, time.September, 1, 0, 0, 0, 0, time.UTC)])

	// Per-100-unit quotes are stored per unit
	jpy, found, err := p.histories.Load(ctx, "JPY")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, jpy[0].Price.Equal(decimal.RequireFromString("0.007501")),
		"expected 0.7501/100, got %s", jpy[0].Price)

	long, err := os.ReadFile(filepath.Join(p.dir, store.LongExportName))
	require.NoError(t, err)
	assert.Equal(t, 1+3*(22+21+12), strings.Count(string(long), "\n"))

	wide, err := os.ReadFile(filepath.Join(p.dir, store.WideExportName))
	require.NoError(t, err)
	lines := strings.Split(string(wide), "\n")
	assert.Equal(t, "date,GBP,JPY,USD,CHF,GBX", lines[0])
	assert.Equal(t, "2010-07-01,1.7601,0.007501,1.0501,1,0.017601", lines[1])

	// A second run with nothing new re-checks only the current month and
	// leaves the stores untouched
	statBefore, err := os.Stat(filepath.Join(p.dir, "USD.csv"))
	require.NoError(t, err)
	seen := len(p.ezv.seen())

	p.run(t, false)

	assert.Equal(t, []string{
		"month 201009 usd",
		"month 201009 gbp",
		"month 201009 jpy",
	}, p.ezv.seen()[seen:])

	statAfter, err := os.Stat(filepath.Join(p.dir, "USD.csv"))
	require.NoError(t, err)
	assert.Equal(t, statBefore.ModTime(), statAfter.ModTime(), "unchanged store should not be rewritten")

	// Once the source publishes more September days, a later run folds them in
	p.ezv.setMonth("usd", "1 USD", 2010, time.September, 14, usdRate)
	p.ezv.setMonth("gbp", "1 GBP", 2010, time.September, 14, gbpRate)
	p.ezv.setMonth("jpy", "100 JPY", 2010, time.September, 14, jpyRate)

	p.run(t, false)

	usd, found, err = p.histories.Load(ctx, "USD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, usd, 22+21+14)

	long, err = os.ReadFile(filepath.Join(p.dir, store.LongExportName))
	require.NoError(t, err)
	assert.Equal(t, 1+3*(22+21+14), strings.Count(string(long), "\n"))
}

func TestAcquisitionPipelineShortMonth(t *testing.T) {
	today := time.Date(2010, time.August, 10, 0, 0, 0, 0, time.UTC)
	p := newPipeline(t, today)
	ctx := context.Background()

	p.ezv.daily = dailyDoc("2010-08-10")
	// July is closed but the source only returns 10 rows for it
	p.ezv.setMonth("usd", "1 USD", 2010, time.July, 10, func(day int) string {
		return fmt.Sprintf("1.%04d", 500+day)
	})

	require.NoError(t, p.registrySvc.Ensure(ctx))

	_, err := p.fetchSvc.FetchCurrency(ctx, "USD")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDataIntegrity)

	_, err = os.Stat(filepath.Join(p.dir, "USD.csv"))
	assert.True(t, os.IsNotExist(err), "aborted fetch must not create a store file")
}
