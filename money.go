package finance

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency amounts are displayed in when none is configured.
const DefaultCurrency = "THB"

// currency returns the go-money currency for a code. Unknown codes get a
// currency with the code as symbol and two decimals.
func currency(code string) money.Currency {
	if code == "" {
		code = DefaultCurrency
	}
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, code).Currency()
}

// FormatAmount formats an amount in a currency, e.g. "฿1,234.50".
func FormatAmount(amount decimal.Decimal, code string) string {
	cur := currency(code)
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatSignedAmount is like FormatAmount with an explicit sign.
// A zero amount is represented as "-".
func FormatSignedAmount(amount decimal.Decimal, code string) string {
	switch {
	case amount.IsZero():
		return "-"
	case amount.IsPositive():
		return "+" + FormatAmount(amount, code)
	}
	return FormatAmount(amount, code)
}
