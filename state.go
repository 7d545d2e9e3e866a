package finance

import (
	"maps"
	"slices"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// UncategorizedID is the id of the reserved category. It always exists and
// can be neither disabled nor deleted.
const UncategorizedID = "cat-uncategorized"

// openingNote is the note carried by opening balance transactions.
const openingNote = "Opening Balance"

// Account is a place money is held in. Its balance is derived by the balance
// engine and never edited directly.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionType tells in which direction a transaction moves money.
type TransactionType string

// Transaction types.
const (
	Income   TransactionType = "income"   // credits ToAccount.
	Expense  TransactionType = "expense"  // debits FromAccount.
	Transfer TransactionType = "transfer" // debits FromAccount and credits ToAccount.
	Opening  TransactionType = "opening"  // credits ToAccount, no category.
)

// Known reports whether t is one of the transaction types the balance engine understands.
func (t TransactionType) Known() bool {
	switch t {
	case Income, Expense, Transfer, Opening:
		return true
	}
	return false
}

// Transaction is an entry of the log. Amount is always a non negative
// magnitude, the direction is carried by Type and the account fields.
type Transaction struct {
	ID             string          `json:"id"`
	Type           TransactionType `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	FromAccount    string          `json:"fromAccount,omitempty"`
	ToAccount      string          `json:"toAccount,omitempty"`
	CategoryID     string          `json:"categoryId,omitempty"`
	CycleID        CycleID         `json:"cycleId"`
	Note           string          `json:"note"`
	Date           date.Date       `json:"date"`
	PlanningCostID string          `json:"planningCostId,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("amount", t.Amount)
	w.Optional("fromAccount", t.FromAccount)
	w.Optional("toAccount", t.ToAccount)
	w.Optional("categoryId", t.CategoryID)
	w.Append("cycleId", t.CycleID)
	w.Append("note", t.Note)
	w.Append("date", t.Date)
	w.Optional("planningCostId", t.PlanningCostID)
	return w.MarshalJSON()
}

// CategoryType tells whether a category labels money coming in or going out.
type CategoryType string

// Category types.
const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

// Category labels transactions, budget entries and planning costs.
type Category struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     CategoryType `json:"type"`
	Disabled bool         `json:"disabled"`
}

// BudgetProfile holds the budgeted amount per category id for one cycle.
type BudgetProfile struct {
	CycleID CycleID                    `json:"cycleId"`
	Budgets map[string]decimal.Decimal `json:"budgets"`
}

// PlanningStatus is the lifecycle of a planning cost.
type PlanningStatus string

// Planning statuses.
const (
	Planned  PlanningStatus = "planned"
	Inactive PlanningStatus = "inactive"
	Done     PlanningStatus = "done"
)

// Valid reports whether s is a known planning status.
func (s PlanningStatus) Valid() bool {
	switch s {
	case Planned, Inactive, Done:
		return true
	}
	return false
}

// PlanningCost is an expected recurring expense for a cycle. Paying it
// records an expense transaction.
type PlanningCost struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
	BillingDay int             `json:"billingDay"`
	CycleID    CycleID         `json:"cycleId"`
	Status     PlanningStatus  `json:"status"`
}

// State is the whole finance dataset.
//
// After every command Accounts[i].Balance equals the balance of the matching
// BaseAccounts entry plus the signed effect of every transaction.
//
// A State returned by the engine is never modified afterward, commands
// produce a new State.
type State struct {
	Accounts      []Account       `json:"accounts"`
	BaseAccounts  []Account       `json:"baseAccounts"`
	Transactions  []Transaction   `json:"transactions"`
	Categories    []Category      `json:"categories"`
	Budgets       []BudgetProfile `json:"budgets"`
	PlanningCosts []PlanningCost  `json:"planningCosts"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := &State{
		Accounts:      slices.Clone(s.Accounts),
		BaseAccounts:  slices.Clone(s.BaseAccounts),
		Transactions:  slices.Clone(s.Transactions),
		Categories:    slices.Clone(s.Categories),
		Budgets:       make([]BudgetProfile, len(s.Budgets)),
		PlanningCosts: slices.Clone(s.PlanningCosts),
	}
	for i, p := range s.Budgets {
		c.Budgets[i] = BudgetProfile{CycleID: p.CycleID, Budgets: maps.Clone(p.Budgets)}
	}
	return c
}

// Account returns the account with this id, or nil.
func (s *State) Account(id string) *Account { return find(s.Accounts, func(a Account) string { return a.ID }, id) }

// Category returns the category with this id, or nil.
func (s *State) Category(id string) *Category {
	return find(s.Categories, func(c Category) string { return c.ID }, id)
}

// CategoryByName returns the category whose name matches, ignoring case and surrounding spaces, or nil.
func (s *State) CategoryByName(name string) *Category {
	return find(s.Categories, func(c Category) string { return normalizeName(c.Name) }, normalizeName(name))
}

// Transaction returns the transaction with this id, or nil.
func (s *State) Transaction(id string) *Transaction {
	return find(s.Transactions, func(t Transaction) string { return t.ID }, id)
}

// PlanningCost returns the planning cost with this id, or nil.
func (s *State) PlanningCost(id string) *PlanningCost {
	return find(s.PlanningCosts, func(p PlanningCost) string { return p.ID }, id)
}

// Budget returns the budget profile of a cycle, or nil.
func (s *State) Budget(cycle CycleID) *BudgetProfile {
	return find(s.Budgets, func(p BudgetProfile) string { return string(p.CycleID) }, string(cycle))
}

// find returns a pointer into list to the first element whose key is k.
// Callers must not write through it on a State they do not own.
func find[T any](list []T, key func(T) string, k string) *T {
	if k == "" {
		return nil
	}
	for i := range list {
		if key(list[i]) == k {
			return &list[i]
		}
	}
	return nil
}

// CategoryUsage counts the references to a category: transactions, planning
// costs and nonzero budget entries.
func (s *State) CategoryUsage(id string) int {
	n := 0
	for _, t := range s.Transactions {
		if t.CategoryID == id {
			n++
		}
	}
	for _, p := range s.PlanningCosts {
		if p.CategoryID == id {
			n++
		}
	}
	for _, b := range s.Budgets {
		if amount, ok := b.Budgets[id]; ok && !amount.IsZero() {
			n++
		}
	}
	return n
}

// Reference is a link from a record to a missing record.
type Reference struct {
	From  string // id of the record holding the reference.
	Field string // name of the field, e.g. "fromAccount".
	To    string // missing id.
}

// DanglingReferences lists the references to accounts, categories and
// planning costs that do not exist. The balance engine skips them.
func (s *State) DanglingReferences() []Reference {
	var refs []Reference
	check := func(from, field, to string, exists bool) {
		if to != "" && !exists {
			refs = append(refs, Reference{From: from, Field: field, To: to})
		}
	}
	for _, t := range s.Transactions {
		check(t.ID, "fromAccount", t.FromAccount, s.Account(t.FromAccount) != nil)
		check(t.ID, "toAccount", t.ToAccount, s.Account(t.ToAccount) != nil)
		check(t.ID, "categoryId", t.CategoryID, s.Category(t.CategoryID) != nil)
		check(t.ID, "planningCostId", t.PlanningCostID, s.PlanningCost(t.PlanningCostID) != nil)
	}
	for _, p := range s.PlanningCosts {
		check(p.ID, "categoryId", p.CategoryID, s.Category(p.CategoryID) != nil)
	}
	for _, b := range s.Budgets {
		for _, id := range slices.Sorted(maps.Keys(b.Budgets)) {
			check(string(b.CycleID), "budgets", id, s.Category(id) != nil)
		}
	}
	return refs
}

// normalizeName is the form category names are compared in.
func normalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
