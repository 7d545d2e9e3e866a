package finance

import (
	"slices"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// NormalizeJSON is Normalize for a raw JSON snapshot. A nil or invalid
// document yields the seed state.
func (e *Engine) NormalizeJSON(data []byte) *State {
	if len(data) == 0 {
		return e.Normalize(nil)
	}
	return e.Normalize(data)
}

// Normalize turns any persisted snapshot into a complete and consistent state.
//
// snapshot is either a decoded JSON value (map[string]any), raw JSON, a
// *State or nil. Whatever the input, the result satisfies the balance
// invariant and normalizing it again gives an equal state.
//
// The snapshot is migrated step by step:
//
//   - a missing snapshot, or one without an accounts list, is replaced by the seed state;
//   - seed categories are merged with the persisted ones, persisted entries winning by id;
//   - transactions get a category id resolved from a legacy category name, a cycle derived from their date, an id and a positive amount;
//   - base accounts are derived from the current balances when absent;
//   - positive base balances move into opening transactions of the current cycle;
//   - the current cycle gets a budget profile;
//   - planning costs are coerced, or taken from the seed when absent;
//   - balances are recalculated.
func (e *Engine) Normalize(snapshot any) *State {
	obj := looseObject(snapshot)
	if _, ok := asList(obj["accounts"]); obj == nil || !ok {
		obj = looseObject(e.SeedState())
	}
	n := normalizer{Engine: e, today: e.today()}
	n.current = CurrentCycleID(n.today)

	s := &State{}
	s.Categories = n.categories(obj["categories"])
	s.Transactions = n.transactions(obj["transactions"], s)
	accounts := n.accounts(obj["accounts"])
	s.BaseAccounts = n.baseAccounts(obj["baseAccounts"], accounts, s.Transactions)
	s.BaseAccounts, s.Transactions = n.migrateOpenings(s.BaseAccounts, s.Transactions)
	s.Budgets = n.budgets(obj["budgets"], s.Categories)
	s.PlanningCosts = n.planningCosts(obj["planningCosts"], s)
	return RecalculateBalances(s)
}

// normalizer holds the context of a single Normalize call.
type normalizer struct {
	*Engine
	today   date.Date
	current CycleID
}

// categories reads the persisted categories. The seed ones are only used when
// the snapshot has no list at all, so that deleted categories stay deleted.
// Uncategorized is always present.
func (n *normalizer) categories(v any) []Category {
	list, ok := asList(v)
	if !ok {
		return seedCategories(n.seed())
	}
	merged := make([]Category, 0, len(list)+1)
	for _, item := range list {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		c := Category{
			ID:       asString(obj["id"]),
			Name:     asString(obj["name"]),
			Type:     CategoryType(asString(obj["type"])),
			Disabled: asBool(obj["disabled"]),
		}
		if c.ID == "" {
			continue
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		if c.Type != IncomeCategory {
			c.Type = ExpenseCategory
		}
		if c.ID == UncategorizedID {
			c.Disabled = false
		}
		if i := slices.IndexFunc(merged, func(m Category) bool { return m.ID == c.ID }); i >= 0 {
			merged[i] = c
		} else {
			merged = append(merged, c)
		}
	}
	if !slices.ContainsFunc(merged, func(c Category) bool { return c.ID == UncategorizedID }) {
		merged = append(merged, uncategorized())
	}
	return merged
}

func (n *normalizer) transactions(v any, s *State) []Transaction {
	list, _ := asList(v)
	transactions := make([]Transaction, 0, len(list))
	for _, item := range list {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		t := Transaction{
			ID:             asString(obj["id"]),
			Type:           TransactionType(strings.ToLower(asString(obj["type"]))),
			FromAccount:    asString(obj["fromAccount"]),
			ToAccount:      asString(obj["toAccount"]),
			Note:           asString(obj["note"]),
			PlanningCostID: asString(obj["planningCostId"]),
		}
		if t.ID == "" {
			t.ID = n.newID()
		}
		if t.Type == "" {
			t.Type = Expense
		}
		amount, _ := asDecimal(obj["amount"])
		t.Amount = amount.Abs()

		on, err := date.Parse(asString(obj["date"]))
		if err != nil {
			on = n.today
		}
		t.Date = on
		t.CycleID = CycleID(asString(obj["cycleId"]))
		if !t.CycleID.Valid() {
			t.CycleID = DeriveCycleID(on)
		}

		switch {
		case t.Type == Opening:
			t.FromAccount, t.CategoryID = "", ""
		default:
			t.CategoryID = asString(obj["categoryId"])
			if t.CategoryID == "" {
				t.CategoryID = categoryIDByName(s, asString(obj["category"]))
			}
		}
		transactions = append(transactions, t)
	}
	return transactions
}

func (n *normalizer) accounts(v any) []Account { return n.accountList(v, true) }

// accountList reads a list of accounts, keeping the first entry of each id.
// Entries without an id get a new one when newIDs is set, and are dropped
// otherwise.
func (n *normalizer) accountList(v any, newIDs bool) []Account {
	list, _ := asList(v)
	accounts := make([]Account, 0, len(list))
	for _, item := range list {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		a := Account{ID: asString(obj["id"]), Name: asString(obj["name"])}
		switch {
		case a.ID == "" && !newIDs:
			continue
		case a.ID == "":
			a.ID = n.newID()
		case slices.ContainsFunc(accounts, func(b Account) bool { return b.ID == a.ID }):
			continue
		}
		a.Balance, _ = asDecimal(obj["balance"])
		accounts = append(accounts, a)
	}
	return accounts
}

// baseAccounts reads the persisted base accounts. Accounts without a base
// entry get the one derived from their current balance.
func (n *normalizer) baseAccounts(v any, accounts []Account, transactions []Transaction) []Account {
	derived := DeriveBaseAccounts(accounts, transactions)
	list, ok := asList(v)
	if !ok {
		return derived
	}
	// A base entry only describes an existing id, it never creates an account.
	base := n.accountList(list, false)
	for i, b := range base {
		if j := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == b.ID }); j >= 0 && accounts[j].Name != "" {
			base[i].Name = accounts[j].Name
		}
	}
	for _, d := range derived {
		if !slices.ContainsFunc(base, func(b Account) bool { return b.ID == d.ID }) {
			base = append(base, d)
		}
	}
	return base
}

// migrateOpenings moves every positive base balance into an opening
// transaction for the current cycle, unless the account already has one.
// Migrated base balances become zero. Negative balances stay in the base.
func (n *normalizer) migrateOpenings(base []Account, transactions []Transaction) ([]Account, []Transaction) {
	for i, b := range base {
		if !b.Balance.IsPositive() || hasOpening(transactions, b.ID, n.current) {
			continue
		}
		transactions = append(transactions, openingTransaction(n.newID(), b.ID, n.current, b.Balance))
		base[i].Balance = decimal.Zero
	}
	return base, transactions
}

func hasOpening(transactions []Transaction, account string, cycle CycleID) bool {
	return slices.ContainsFunc(transactions, func(t Transaction) bool {
		return t.Type == Opening && t.ToAccount == account && t.CycleID == cycle
	})
}

func openingTransaction(id, account string, cycle CycleID, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        id,
		Type:      Opening,
		Amount:    amount,
		ToAccount: account,
		CycleID:   cycle,
		Note:      openingNote,
		Date:      cycle.FirstDay(),
	}
}

// budgets merges profiles of the same cycle and ensures the current cycle has
// one. The bundled budget amounts are used only when there is no profile at all.
func (n *normalizer) budgets(v any, categories []Category) []BudgetProfile {
	list, _ := asList(v)
	profiles := make([]BudgetProfile, 0, len(list)+1)
	for _, item := range list {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		cycle := CycleID(asString(obj["cycleId"]))
		if !cycle.Valid() {
			continue
		}
		i := slices.IndexFunc(profiles, func(p BudgetProfile) bool { return p.CycleID == cycle })
		if i < 0 {
			profiles = append(profiles, BudgetProfile{CycleID: cycle, Budgets: map[string]decimal.Decimal{}})
			i = len(profiles) - 1
		}
		amounts, _ := asObject(obj["budgets"])
		for id, raw := range amounts {
			amount, _ := asDecimal(raw)
			if amount.IsNegative() {
				amount = decimal.Zero
			}
			profiles[i].Budgets[id] = amount
		}
	}
	if slices.ContainsFunc(profiles, func(p BudgetProfile) bool { return p.CycleID == n.current }) {
		return profiles
	}
	budgets := map[string]decimal.Decimal{}
	if len(profiles) == 0 {
		budgets = seedBudgetMap(n.seed(), categories)
	}
	return append(profiles, BudgetProfile{CycleID: n.current, Budgets: budgets})
}

func (n *normalizer) planningCosts(v any, s *State) []PlanningCost {
	list, ok := asList(v)
	if !ok {
		return seedPlanningCosts(n.seed(), s, n.current)
	}
	costs := make([]PlanningCost, 0, len(list))
	for _, item := range list {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		p := PlanningCost{
			ID:         asString(obj["id"]),
			Name:       asString(obj["name"]),
			CategoryID: asString(obj["categoryId"]),
			CycleID:    CycleID(asString(obj["cycleId"])),
			Status:     PlanningStatus(asString(obj["status"])),
		}
		if p.ID == "" {
			p.ID = n.newID()
		}
		amount, _ := asDecimal(obj["amount"])
		p.Amount = amount.Abs()
		day, _ := asInt(obj["billingDay"])
		p.BillingDay = clampBillingDay(day)
		if p.CategoryID == "" {
			p.CategoryID = UncategorizedID
		}
		if !p.CycleID.Valid() {
			p.CycleID = n.current
		}
		if !p.Status.Valid() {
			p.Status = Planned
		}
		costs = append(costs, p)
	}
	return costs
}

// clampBillingDay keeps a billing day within 1..31. Zero means unset and becomes 1.
func clampBillingDay(day int) int { return min(max(day, 1), 31) }
