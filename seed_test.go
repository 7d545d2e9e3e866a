package finance

import (
	"strings"
	"testing"

	"github.com/etnz/finance/date"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	if seed.Currency != "THB" {
		t.Errorf("currency = %q", seed.Currency)
	}
	if len(seed.Accounts) == 0 || len(seed.Categories) == 0 || len(seed.Transactions) == 0 || len(seed.Subscriptions) == 0 {
		t.Errorf("the bundled seed is incomplete: %+v", seed)
	}
}

func TestDecodeSeed_Invalid(t *testing.T) {
	if _, err := DecodeSeed(strings.NewReader(`{"accounts": 3}`)); err == nil {
		t.Error("DecodeSeed() expected an error")
	}
}

func TestBuildSeedState(t *testing.T) {
	s := BuildSeedState(DefaultSeed(), date.MustParse("2026-01-27"))

	if err := CheckBalances(s); err != nil {
		t.Fatal(err)
	}
	// seed balances are base balances, accounts are the result of the history.
	if got := s.BaseAccounts[1]; got.ID != "acc-2" || got.Name != "True Wallet" || !got.Balance.Equal(D("106.13")) {
		t.Errorf("base account = %+v", got)
	}
	// 106.13 - 95 - 854.93 - 437
	if got := balanceOf(t, s, "acc-2"); !got.Equal(D("-1280.8")) {
		t.Errorf("True Wallet = %s, want -1280.8", got)
	}

	tx := s.Transaction("txn-3")
	if tx == nil || tx.FromAccount != "acc-4" || tx.CategoryID != "cat-transportation" || tx.CycleID != "2026-01" {
		t.Errorf("txn-3 = %+v", tx)
	}

	profile := s.Budget("2026-02")
	if profile == nil {
		t.Fatal("the current cycle has no budget profile")
	}
	if len(profile.Budgets) != len(s.Categories) {
		t.Errorf("the seed profile lists %d categories, want %d", len(profile.Budgets), len(s.Categories))
	}
	if !profile.Budgets["cat-home"].Equal(D("9466")) || !profile.Budgets["cat-salary"].IsZero() {
		t.Errorf("budgets = %v", profile.Budgets)
	}

	utility := s.PlanningCost("plan-2")
	want := PlanningCost{ID: "plan-2", Name: "Utility", Amount: D("2460.66"), CategoryID: "cat-fix-cost", BillingDay: 29, CycleID: "2026-02", Status: Planned}
	if diff := diffState(&State{PlanningCosts: []PlanningCost{want}}, &State{PlanningCosts: []PlanningCost{*utility}}); diff != "" {
		t.Errorf("planning cost mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSeedState_AddsReservedCategory(t *testing.T) {
	seed, err := DecodeSeed(strings.NewReader(`{
		"accounts": [{"name": "Cash", "balance": 10}],
		"categories": [{"id": "cat-misc", "name": "Misc", "type": "weird"}],
		"transactions": [{"id": "1", "amount": 4, "category": "Nope", "method": "Cash", "date": "2026-01-03"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	s := BuildSeedState(seed, date.MustParse("2026-01-15"))
	if c := s.Category("cat-misc"); c == nil || c.Type != ExpenseCategory {
		t.Errorf("cat-misc = %+v", c)
	}
	if s.Category(UncategorizedID) == nil {
		t.Error("the reserved category is missing")
	}
	if got := s.Transaction("txn-1").CategoryID; got != UncategorizedID {
		t.Errorf("unknown category resolved to %q", got)
	}
	if got := balanceOf(t, s, "acc-1"); !got.Equal(D("6")) {
		t.Errorf("Cash = %s, want 6", got)
	}
}
