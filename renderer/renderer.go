// Package renderer renders finance states as markdown reports.
package renderer

import (
	"fmt"

	"github.com/etnz/finance"
	"github.com/shopspring/decimal"
)

// Options holds configuration shared by every report.
type Options struct {
	Currency string // currency code amounts are formatted in, finance.DefaultCurrency when empty.
	Limit    int    // maximum number of transactions listed, 0 for all of them.
}

func (o Options) amount(d decimal.Decimal) string { return finance.FormatAmount(d, o.Currency) }

func (o Options) signed(d decimal.Decimal) string { return finance.FormatSignedAmount(d, o.Currency) }

// cycleTitle returns a cycle label with its dates, e.g. "2026-02 (2026-01-27..2026-02-26)".
// An empty cycle is "All cycles".
func cycleTitle(cycle finance.CycleID) string {
	if cycle == "" {
		return "All cycles"
	}
	return fmt.Sprintf("%s (%s)", cycle, cycle.Range())
}
