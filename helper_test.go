package finance

import (
	"fmt"
	"testing"

	"github.com/etnz/finance/date"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from const
func D(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// P is a helper for test to create decimal pointers from const, as commands take them.
func P(v string) *decimal.Decimal {
	d := D(v)
	return &d
}

// newTestEngine returns an engine whose clock is fixed on today and whose ids
// are "id-1", "id-2"...
func newTestEngine(today string) *Engine {
	n := 0
	return &Engine{
		Today: func() date.Date { return date.MustParse(today) },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

// decimalComparer compares decimals by value, 1.0 equals 1.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// dateComparer compares dates, they have unexported fields.
var dateComparer = cmp.Comparer(func(a, b date.Date) bool { return a == b })

// diffState returns a human readable diff between states, or "".
func diffState(want, got *State) string {
	return cmp.Diff(want, got, decimalComparer, dateComparer, cmpopts.EquateEmpty())
}

// twoAccounts is a small state with a Bank at 1000 and a Wallet at 50, both
// held in base balances, and two categories.
func twoAccounts() *State {
	s := &State{
		BaseAccounts: []Account{
			{ID: "bank", Name: "Bank", Balance: D("1000")},
			{ID: "wallet", Name: "Wallet", Balance: D("50")},
		},
		Transactions: []Transaction{},
		Categories: []Category{
			{ID: "cat-food", Name: "Food", Type: ExpenseCategory},
			{ID: "cat-salary", Name: "Salary", Type: IncomeCategory},
			uncategorized(),
		},
		Budgets:       []BudgetProfile{},
		PlanningCosts: []PlanningCost{},
	}
	return RecalculateBalances(s)
}

// balanceOf returns the balance of an account, failing the test if it does not exist.
func balanceOf(t *testing.T, s *State, id string) decimal.Decimal {
	t.Helper()
	a := s.Account(id)
	if a == nil {
		t.Fatalf("account %q does not exist", id)
	}
	return a.Balance
}
