package finance

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

//go:embed assets/seed.json
var seedJSON []byte

// SeedData is the bundled example dataset new states are built from.
type SeedData struct {
	Currency string `json:"currency"`
	Accounts []struct {
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"`
	} `json:"accounts"`
	Categories []Category `json:"categories"`
	Budgets    []struct {
		Category string          `json:"category"` // category name.
		Amount   decimal.Decimal `json:"amount"`
	} `json:"budgets"`
	Subscriptions []struct {
		Name     string          `json:"name"`
		Cost     decimal.Decimal `json:"cost"`
		NextDate string          `json:"nextDate"`
		Category string          `json:"category"`
	} `json:"subscriptions"`
	Transactions []struct {
		ID       string          `json:"id"`
		Note     string          `json:"note"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"` // category name.
		Method   string          `json:"method"`   // account name.
		Date     string          `json:"date"`
	} `json:"transactions"`
}

// DecodeSeed reads a seed dataset in the assets/seed.json format.
func DecodeSeed(r io.Reader) (SeedData, error) {
	var seed SeedData
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return SeedData{}, fmt.Errorf("cannot decode seed data: %w", err)
	}
	return seed, nil
}

// DefaultSeed returns the bundled seed dataset.
func DefaultSeed() SeedData {
	seed, err := DecodeSeed(bytes.NewReader(seedJSON))
	if err != nil {
		panic(err) // the asset is compiled in.
	}
	return seed
}

// BuildSeedState builds a complete state out of seed data.
//
// Accounts get ids "acc-N", historical expenses "txn-N" and subscriptions
// become planning costs "plan-N" for the cycle containing today. The budget
// profile of that cycle lists every category, budgeted or not.
func BuildSeedState(seed SeedData, today date.Date) *State {
	current := CurrentCycleID(today)
	s := &State{
		Accounts:      []Account{},
		BaseAccounts:  []Account{},
		Transactions:  []Transaction{},
		Categories:    seedCategories(seed),
		Budgets:       []BudgetProfile{},
		PlanningCosts: []PlanningCost{},
	}

	accountIDs := make(map[string]string)
	for i, a := range seed.Accounts {
		acc := Account{ID: fmt.Sprintf("acc-%d", i+1), Name: a.Name, Balance: a.Balance}
		accountIDs[a.Name] = acc.ID
		s.BaseAccounts = append(s.BaseAccounts, acc)
	}

	for _, t := range seed.Transactions {
		on, err := date.Parse(t.Date)
		if err != nil {
			on = today
		}
		s.Transactions = append(s.Transactions, Transaction{
			ID:          "txn-" + t.ID,
			Type:        Expense,
			Amount:      t.Amount.Abs(),
			FromAccount: accountIDs[t.Method],
			CategoryID:  categoryIDByName(s, t.Category),
			CycleID:     DeriveCycleID(on),
			Note:        t.Note,
			Date:        on,
		})
	}

	s.Budgets = append(s.Budgets, BudgetProfile{CycleID: current, Budgets: seedBudgetMap(seed, s.Categories)})
	s.PlanningCosts = seedPlanningCosts(seed, s, current)
	return RecalculateBalances(s)
}

// seedCategories returns the seed categories with the reserved one guaranteed.
func seedCategories(seed SeedData) []Category {
	categories := make([]Category, 0, len(seed.Categories)+1)
	reserved := false
	for _, c := range seed.Categories {
		if c.Type != IncomeCategory {
			c.Type = ExpenseCategory
		}
		if c.ID == UncategorizedID {
			reserved = true
			c.Disabled = false
		}
		categories = append(categories, c)
	}
	if !reserved {
		categories = append(categories, uncategorized())
	}
	return categories
}

func uncategorized() Category {
	return Category{ID: UncategorizedID, Name: "Uncategorized", Type: ExpenseCategory}
}

// categoryIDByName resolves a category name to its id, falling back on the
// reserved category.
func categoryIDByName(s *State, name string) string {
	if c := s.CategoryByName(name); c != nil {
		return c.ID
	}
	return UncategorizedID
}

// seedBudgetMap maps every category to its seed budget, zero when none.
func seedBudgetMap(seed SeedData, categories []Category) map[string]decimal.Decimal {
	s := &State{Categories: categories}
	budgets := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		budgets[c.ID] = decimal.Zero
	}
	for _, b := range seed.Budgets {
		if c := s.CategoryByName(b.Category); c != nil {
			budgets[c.ID] = b.Amount.Abs()
		}
	}
	return budgets
}

// seedPlanningCosts turns seed subscriptions into planning costs for a cycle.
// The billing day is the day of the subscription's next date.
func seedPlanningCosts(seed SeedData, s *State, cycle CycleID) []PlanningCost {
	costs := make([]PlanningCost, 0, len(seed.Subscriptions))
	for i, sub := range seed.Subscriptions {
		day := 1
		if next, err := date.Parse(sub.NextDate); err == nil {
			day = next.Day()
		}
		category := sub.Category
		if category == "" {
			category = "Subscription"
		}
		costs = append(costs, PlanningCost{
			ID:         fmt.Sprintf("plan-%d", i+1),
			Name:       sub.Name,
			Amount:     sub.Cost.Abs(),
			CategoryID: categoryIDByName(s, category),
			BillingDay: day,
			CycleID:    cycle,
			Status:     Planned,
		})
	}
	return costs
}
