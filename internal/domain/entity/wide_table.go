package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WideTable is a date-by-currency pivot of rate observations. Pivoted
// columns are ordered lexicographically; derived columns keep the order
// they were added in, after the pivoted ones.
type WideTable struct {
	dates   []time.Time
	columns []string
	cells   map[time.Time]map[string]decimal.Decimal
}

// PivotWide builds a wide table from a long rate listing. A cell stays
// empty for every date/currency combination with no observation.
func PivotWide(rows []Rate) *WideTable {
	t := &WideTable{
		cells: make(map[time.Time]map[string]decimal.Decimal),
	}

	seen := make(map[string]bool)
	for _, r := range rows {
		if t.cells[r.Date] == nil {
			t.cells[r.Date] = make(map[string]decimal.Decimal)
			t.dates = append(t.dates, r.Date)
		}
		t.cells[r.Date][r.Symbol] = r.Price

		if !seen[r.Symbol] {
			seen[r.Symbol] = true
			t.columns = append(t.columns, r.Symbol)
		}
	}

	sort.Slice(t.dates, func(i, j int) bool { return t.dates[i].Before(t.dates[j]) })
	sort.Strings(t.columns)

	return t
}

// Dates returns the row keys in ascending order.
func (t *WideTable) Dates() []time.Time {
	return t.dates
}

// Columns returns the column labels in output order.
func (t *WideTable) Columns() []string {
	return t.columns
}

// HasColumn reports whether the table carries a column for the symbol.
func (t *WideTable) HasColumn(symbol string) bool {
	for _, c := range t.columns {
		if c == symbol {
			return true
		}
	}
	return false
}

// Value returns the cell at (date, symbol). The second return is false
// when the cell is empty.
func (t *WideTable) Value(date time.Time, symbol string) (decimal.Decimal, bool) {
	row, ok := t.cells[date]
	if !ok {
		return decimal.Decimal{}, false
	}
	v, ok := row[symbol]
	return v, ok
}

// SetConstant fills a column with the same value on every date, adding the
// column when it does not exist yet.
func (t *WideTable) SetConstant(symbol string, value decimal.Decimal) {
	t.ensureColumn(symbol)
	for _, d := range t.dates {
		t.cells[d][symbol] = value
	}
}

// DeriveScaled adds a column computed by dividing an existing column's
// values by divisor; dates where the source cell is empty stay empty. It
// reports whether the source column was present.
func (t *WideTable) DeriveScaled(symbol, source string, divisor decimal.Decimal) bool {
	if !t.HasColumn(source) {
		return false
	}

	t.ensureColumn(symbol)
	for _, d := range t.dates {
		if v, ok := t.cells[d][source]; ok {
			t.cells[d][symbol] = v.Div(divisor)
		}
	}
	return true
}

func (t *WideTable) ensureColumn(symbol string) {
	if !t.HasColumn(symbol) {
		t.columns = append(t.columns, symbol)
	}
}
