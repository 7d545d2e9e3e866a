package finance

import (
	"cmp"
	"slices"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// Read only views over a State used by the dashboard, the CLI and the HTTP
// API. An empty cycle means every cycle.

// inCycle returns a transaction filter for a cycle.
func inCycle(cycle CycleID) func(Transaction) bool {
	return func(t Transaction) bool { return cycle == "" || t.CycleID == cycle }
}

// TransactionsIn returns the transactions of a cycle, in log order.
func (s *State) TransactionsIn(cycle CycleID) []Transaction {
	return slices.DeleteFunc(slices.Clone(s.Transactions), func(t Transaction) bool { return !inCycle(cycle)(t) })
}

// AccountSummary is an account with the income and expenses recorded on it.
type AccountSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// AccountSummaries returns one summary per account, in account order.
func AccountSummaries(s *State, cycle CycleID) []AccountSummary {
	income := map[string]decimal.Decimal{}
	expenses := map[string]decimal.Decimal{}
	for _, t := range s.TransactionsIn(cycle) {
		switch t.Type {
		case Income:
			income[t.ToAccount] = income[t.ToAccount].Add(t.Amount)
		case Expense:
			expenses[t.FromAccount] = expenses[t.FromAccount].Add(t.Amount)
		}
	}
	summaries := make([]AccountSummary, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		summaries = append(summaries, AccountSummary{
			ID:       a.ID,
			Name:     a.Name,
			Balance:  a.Balance,
			Income:   income[a.ID],
			Expenses: expenses[a.ID],
		})
	}
	return summaries
}

// TransactionRow is a transaction prepared for display.
type TransactionRow struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"` // note, or a label derived from the category.
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category"` // "Opening", "Transfer" or the category name.
	CategoryID       string          `json:"categoryId"`
	CategoryDisabled bool            `json:"categoryDisabled"`
	Type             TransactionType `json:"type"`
	Method           string          `json:"method"` // account(s) involved, "A → B" for transfers.
	Date             date.Date       `json:"date"`
	CycleID          CycleID         `json:"cycleId"`
}

// TransactionRows returns display rows, most recent first. Transactions of
// the same day keep the reverse of their log order.
func TransactionRows(s *State, cycle CycleID) []TransactionRow {
	name := func(id string) string {
		if id == "" {
			return "—"
		}
		if a := s.Account(id); a != nil {
			return a.Name
		}
		return "Unknown"
	}
	txs := s.TransactionsIn(cycle)
	rows := make([]TransactionRow, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		row := TransactionRow{
			ID:         t.ID,
			Title:      t.Note,
			Amount:     t.Amount,
			CategoryID: t.CategoryID,
			Type:       t.Type,
			Method:     "—",
			Date:       t.Date,
			CycleID:    t.CycleID,
		}
		categoryName := "Uncategorized"
		if c := s.Category(t.CategoryID); c != nil {
			categoryName = c.Name
			row.CategoryDisabled = c.Disabled
		}
		switch t.Type {
		case Income, Opening:
			row.Method = name(t.ToAccount)
		case Expense:
			row.Method = name(t.FromAccount)
		case Transfer:
			row.Method = name(t.FromAccount) + " → " + name(t.ToAccount)
		}
		switch t.Type {
		case Opening:
			row.Category = "Opening"
		case Transfer:
			row.Category = "Transfer"
		default:
			row.Category = categoryName
		}
		if row.Title == "" {
			row.Title = categoryName
			if t.Type == Opening {
				row.Title = openingNote
			}
		}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a, b TransactionRow) int {
		return -cmp.Compare(a.Date.String(), b.Date.String())
	})
	return rows
}

// CategoryAmount is an amount attributed to a category label.
type CategoryAmount struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// CashFlow sums incomes and expenses of a cycle.
type CashFlow struct {
	Inflow    decimal.Decimal  `json:"inflow"`
	Outflow   decimal.Decimal  `json:"outflow"`
	Breakdown []CategoryAmount `json:"breakdown"` // the largest expense categories, at most 5.
}

// Net returns inflow minus outflow.
func (c CashFlow) Net() decimal.Decimal { return c.Inflow.Sub(c.Outflow) }

// maxBreakdown is the number of categories in a cash flow breakdown.
const maxBreakdown = 5

// ComputeCashFlow returns the cash flow of a cycle. Transfers and openings are
// not flows.
func ComputeCashFlow(s *State, cycle CycleID) CashFlow {
	var flow CashFlow
	var breakdown []CategoryAmount
	for _, t := range s.TransactionsIn(cycle) {
		switch t.Type {
		case Income:
			flow.Inflow = flow.Inflow.Add(t.Amount)
		case Expense:
			flow.Outflow = flow.Outflow.Add(t.Amount)
			label := "Uncategorized"
			if c := s.Category(t.CategoryID); c != nil {
				label = c.Name
			}
			if i := slices.IndexFunc(breakdown, func(c CategoryAmount) bool { return c.Label == label }); i >= 0 {
				breakdown[i].Value = breakdown[i].Value.Add(t.Amount)
			} else {
				breakdown = append(breakdown, CategoryAmount{Label: label, Value: t.Amount})
			}
		}
	}
	slices.SortStableFunc(breakdown, func(a, b CategoryAmount) int { return b.Value.Cmp(a.Value) })
	flow.Breakdown = breakdown[:min(len(breakdown), maxBreakdown)]
	return flow
}

// BudgetLine compares the budget of a category with what was spent.
type BudgetLine struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
}

// Left returns what remains of the budget, negative when overspent.
func (l BudgetLine) Left() decimal.Decimal { return l.Budget.Sub(l.Spent) }

// BudgetUsage returns a line per enabled expense category with a budget or
// spending in the cycle, in category order.
func BudgetUsage(s *State, cycle CycleID) []BudgetLine {
	spent := map[string]decimal.Decimal{}
	for _, t := range s.TransactionsIn(cycle) {
		if t.Type == Expense {
			spent[t.CategoryID] = spent[t.CategoryID].Add(t.Amount)
		}
	}
	var budgets map[string]decimal.Decimal
	if p := s.Budget(cycle); p != nil {
		budgets = p.Budgets
	}
	var lines []BudgetLine
	for _, c := range s.Categories {
		budget, spending := budgets[c.ID], spent[c.ID]
		if c.Type == IncomeCategory || (budget.IsZero() && spending.IsZero()) {
			continue
		}
		if c.Disabled && spending.IsZero() {
			continue
		}
		lines = append(lines, BudgetLine{CategoryID: c.ID, Name: c.Name, Budget: budget, Spent: spending})
	}
	return lines
}

// PlannedTotal sums the planning costs of a cycle still planned.
func PlannedTotal(s *State, cycle CycleID) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.PlanningCosts {
		if p.CycleID == cycle && p.Status == Planned {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TotalBalance sums every account balance.
func TotalBalance(s *State) decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// KPIs are the headline figures of the dashboard for a cycle.
type KPIs struct {
	Cycle          CycleID         `json:"cycle"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	Available      decimal.Decimal `json:"available"` // total balance minus planned costs.
	CashFlow       CashFlow        `json:"cashFlow"`
	PlannedCosts   decimal.Decimal `json:"plannedCosts"`
	BudgetTotal    decimal.Decimal `json:"budgetTotal"`
	SpentTotal     decimal.Decimal `json:"spentTotal"` // spending in budgeted categories.
	BudgetLeft     decimal.Decimal `json:"budgetLeft"`
	DanglingCounts int             `json:"danglingCounts"` // number of references to missing records.
}

// ComputeKPIs returns the dashboard figures of a cycle.
func ComputeKPIs(s *State, cycle CycleID) KPIs {
	k := KPIs{
		Cycle:          cycle,
		TotalBalance:   TotalBalance(s),
		CashFlow:       ComputeCashFlow(s, cycle),
		PlannedCosts:   PlannedTotal(s, cycle),
		DanglingCounts: len(s.DanglingReferences()),
	}
	k.Available = k.TotalBalance.Sub(k.PlannedCosts)
	for _, l := range BudgetUsage(s, cycle) {
		if l.Budget.IsZero() {
			continue
		}
		k.BudgetTotal = k.BudgetTotal.Add(l.Budget)
		k.SpentTotal = k.SpentTotal.Add(l.Spent)
	}
	k.BudgetLeft = k.BudgetTotal.Sub(k.SpentTotal)
	return k
}
