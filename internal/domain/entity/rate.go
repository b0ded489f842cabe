package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// HomeCurrency is the currency every published rate is quoted in.
const HomeCurrency = "CHF"

// Rate represents one published exchange rate observation
type Rate struct {
	Date     time.Time
	Symbol   string
	Country  string
	Price    decimal.Decimal
	Currency string
}

// Equal reports whether two observations are the same. Prices compare by
// numeric value, not by representation.
func (r Rate) Equal(other Rate) bool {
	return r.Date.Equal(other.Date) &&
		r.Symbol == other.Symbol &&
		r.Country == other.Country &&
		r.Price.Equal(other.Price) &&
		r.Currency == other.Currency
}

// Month returns the first day of the month the observation falls in.
func (r Rate) Month() time.Time {
	return MonthOf(r.Date)
}

// Day truncates a timestamp to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthOf truncates a date to the first day of its month.
func MonthOf(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// History is the date-ordered rate history of a single currency.
// It holds at most one rate per date.
type History []Rate

// Merge combines the history with freshly fetched rows and returns the
// result sorted by date. A fetched row for a date already present replaces
// the stored row wholesale. The receiver is left unmodified.
func (h History) Merge(fetched []Rate) History {
	byDate := make(map[time.Time]Rate, len(h)+len(fetched))
	order := make([]time.Time, 0, len(h)+len(fetched))

	for _, r := range h {
		if _, seen := byDate[r.Date]; !seen {
			order = append(order, r.Date)
		}
		byDate[r.Date] = r
	}
	for _, r := range fetched {
		if _, seen := byDate[r.Date]; !seen {
			order = append(order, r.Date)
		}
		byDate[r.Date] = r
	}

	merged := make(History, 0, len(order))
	for _, d := range order {
		merged = append(merged, byDate[d])
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	return merged
}

// Equal reports whether both histories hold the same rows in the same order.
func (h History) Equal(other History) bool {
	if len(h) != len(other) {
		return false
	}
	for i := range h {
		if !h[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Months returns the set of distinct calendar months present in the history.
func (h History) Months() map[time.Time]bool {
	months := make(map[time.Time]bool, len(h))
	for _, r := range h {
		months[r.Month()] = true
	}
	return months
}

// LatestDate returns the most recent date present. The second return is
// false for an empty history.
func (h History) LatestDate() (time.Time, bool) {
	if len(h) == 0 {
		return time.Time{}, false
	}
	latest := h[0].Date
	for _, r := range h[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, true
}
