package finance

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/etnz/finance/date"
)

// cutoverDay is the first day of a billing cycle. A cycle runs from the
// cutoverDay of a month to the day before the cutoverDay of the next month.
const cutoverDay = 27

// CycleID identifies a billing cycle by the month it ends in, formatted "YYYY-MM".
//
// Cycle "2026-02" runs from 2026-01-27 to 2026-02-26.
type CycleID string

// DeriveCycleID returns the cycle that contains day d.
func DeriveCycleID(d date.Date) CycleID {
	end := d.AddMonths(0)
	if d.Day() >= cutoverDay {
		end = d.AddMonths(1)
	}
	return cycleOf(end.Year(), end.Month())
}

// CurrentCycleID returns the cycle containing today.
func CurrentCycleID(today date.Date) CycleID { return DeriveCycleID(today) }

// ResolveCycleID parses raw as a date and returns its cycle.
// When raw is not a valid date the cycle containing today is returned.
func ResolveCycleID(raw string, today date.Date) CycleID {
	d, err := date.Parse(raw)
	if err != nil {
		return CurrentCycleID(today)
	}
	return DeriveCycleID(d)
}

// ParseCycleID parses a cycle label. It accepts "2026-02" and "2026-2".
func ParseCycleID(s string) (CycleID, error) {
	t, err := time.Parse("2006-1", s)
	if err != nil || t.Year() == 0 {
		return "", fmt.Errorf("invalid cycle %q want format \"YYYY-MM\"", s)
	}
	return cycleOf(t.Year(), t.Month()), nil
}

func cycleOf(year int, month time.Month) CycleID {
	return CycleID(fmt.Sprintf("%04d-%02d", year, month))
}

// end returns the first day of the month the cycle ends in.
func (c CycleID) end() (date.Date, bool) {
	t, err := time.Parse("2006-01", string(c))
	if err != nil || t.Year() == 0 {
		return date.Date{}, false
	}
	return date.New(t.Year(), t.Month(), 1), true
}

// Valid reports whether c is a well formed cycle label.
func (c CycleID) Valid() bool {
	_, ok := c.end()
	return ok
}

// Add returns the cycle n cycles after c (before when n is negative).
// An invalid cycle stays as is.
func (c CycleID) Add(n int) CycleID {
	end, ok := c.end()
	if !ok {
		return c
	}
	end = end.AddMonths(n)
	return cycleOf(end.Year(), end.Month())
}

// Range returns the days covered by the cycle.
func (c CycleID) Range() date.Range {
	end, ok := c.end()
	if !ok {
		return date.Range{}
	}
	prev := end.AddMonths(-1)
	return date.Range{
		From: date.New(prev.Year(), prev.Month(), cutoverDay),
		To:   date.New(end.Year(), end.Month(), cutoverDay-1),
	}
}

// FirstDay returns the first day of the month the cycle is labelled with.
// Opening balances are dated on that day.
func (c CycleID) FirstDay() date.Date {
	end, _ := c.end()
	return end
}

// Contains reports whether day d belongs to the cycle.
func (c CycleID) Contains(d date.Date) bool { return DeriveCycleID(d) == c }

// CycleOptions returns the 2n+1 consecutive cycles centered on center in
// ascending order. An invalid center yields nothing.
func CycleOptions(center CycleID, n int) iter.Seq[CycleID] {
	return func(yield func(CycleID) bool) {
		if !center.Valid() || n < 0 {
			return
		}
		for offset := -n; offset <= n; offset++ {
			if !yield(center.Add(offset)) {
				return
			}
		}
	}
}

// CycleOptionList collects CycleOptions.
func CycleOptionList(center CycleID, n int) []CycleID {
	return slices.Collect(CycleOptions(center, n))
}
