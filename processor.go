package finance

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/etnz/finance/date"
	"github.com/shopspring/decimal"
)

// Apply returns the state resulting from applying cmd to s.
//
// s is never modified. Commands with missing or invalid fields, and commands
// of unknown types, return s itself. Every command changing transactions or
// base balances recalculates the balances.
func (e *Engine) Apply(s *State, cmd Command) *State {
	if s == nil {
		panic("finance: Apply on a nil state")
	}
	switch c := deref(cmd).(type) {
	case AddTransaction:
		return e.addTransaction(s, c)
	case UpdateTransaction:
		return e.updateTransaction(s, c)
	case DeleteTransaction:
		return e.deleteTransaction(s, c)
	case AddAccount:
		return e.addAccount(s, c)
	case RenameAccount:
		return e.renameAccount(s, c)
	case SetOpeningBalance:
		return e.setOpeningBalance(s, c)
	case AdjustAccountBalance:
		return e.adjustAccountBalance(s, c)
	case AddCategory:
		return e.addCategory(s, c)
	case RenameCategory:
		return e.updateCategory(s, UpdateCategory{ID: c.ID, Name: &c.Name})
	case UpdateCategory:
		return e.updateCategory(s, c)
	case EnableCategory:
		return e.setCategoryDisabled(s, c.ID, false)
	case DisableCategory:
		return e.setCategoryDisabled(s, c.ID, true)
	case DeleteCategory:
		return e.deleteCategory(s, c)
	case UpdateBudget:
		return e.updateBudget(s, c)
	case EnsureBudgetProfile:
		return e.ensureBudgetProfile(s, c)
	case AddPlanningCost:
		return e.addPlanningCost(s, c)
	case UpdatePlanningCost:
		return e.updatePlanningCost(s, c)
	case DeletePlanningCost:
		return e.deletePlanningCost(s, c)
	case SetPlanningStatus:
		return e.updatePlanningCost(s, UpdatePlanningCost{ID: c.ID, Status: &c.Status})
	case PayPlanningCost:
		return e.payPlanningCost(s, c)
	case RecalculateBalancesCmd:
		return RecalculateBalances(s)
	}
	return s
}

// ApplyAll applies commands in order.
func (e *Engine) ApplyAll(s *State, cmds ...Command) *State {
	for _, cmd := range cmds {
		s = e.Apply(s, cmd)
	}
	return s
}

// validTransaction checks the account fields required by the transaction
// type. Referenced accounts must exist.
func validTransaction(s *State, t Transaction) bool {
	if t.Amount.IsNegative() {
		return false
	}
	exists := func(id string) bool { return s.Account(id) != nil }
	switch t.Type {
	case Expense:
		return exists(t.FromAccount) && t.ToAccount == ""
	case Income, Opening:
		return exists(t.ToAccount) && t.FromAccount == ""
	case Transfer:
		return exists(t.FromAccount) && exists(t.ToAccount) && t.FromAccount != t.ToAccount
	}
	return false
}

// clearUnusedSides empties the account field a transaction type does not use.
func clearUnusedSides(t *Transaction) {
	switch t.Type {
	case Expense:
		t.ToAccount = ""
	case Income, Opening:
		t.FromAccount = ""
	}
	if t.Type == Opening {
		t.CategoryID = ""
	}
}

// resolveCategory returns the category id to store for a transaction: the
// given id when it exists, else the legacy name resolved, else the reserved
// category.
func resolveCategory(s *State, id, name string) string {
	if s.Category(id) != nil {
		return id
	}
	return categoryIDByName(s, name)
}

// parseDateOr parses raw, returning fallback when raw is empty or invalid.
func parseDateOr(raw string, fallback date.Date) date.Date {
	d, err := date.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return d
}

func (e *Engine) addTransaction(s *State, c AddTransaction) *State {
	if c.Amount == nil {
		return s
	}
	t := Transaction{
		ID:          e.newID(),
		Type:        c.Type,
		Amount:      c.Amount.Abs(),
		FromAccount: c.FromAccount,
		ToAccount:   c.ToAccount,
		Note:        strings.TrimSpace(c.Note),
		Date:        parseDateOr(c.Date, e.today()),
	}
	if t.Type == "" {
		t.Type = Expense
	}
	// openings are only written by SetOpeningBalance and AddAccount.
	if t.Type == Opening {
		return s
	}
	clearUnusedSides(&t)
	if !validTransaction(s, t) {
		return s
	}
	t.CategoryID = resolveCategory(s, c.CategoryID, c.Category)
	t.CycleID = c.CycleID
	if !t.CycleID.Valid() {
		t.CycleID = DeriveCycleID(t.Date)
	}

	next := *s
	next.Transactions = append(slices.Clone(s.Transactions), t)
	return RecalculateBalances(&next)
}

func (e *Engine) updateTransaction(s *State, c UpdateTransaction) *State {
	i := slices.IndexFunc(s.Transactions, func(t Transaction) bool { return t.ID == c.ID })
	if c.ID == "" || i < 0 {
		return s
	}
	old := s.Transactions[i]
	t := old
	if c.Type != nil {
		t.Type = *c.Type
		// a transaction cannot become, nor stop being, an opening balance.
		if (t.Type == Opening) != (old.Type == Opening) {
			return s
		}
	}
	if c.Amount != nil {
		t.Amount = c.Amount.Abs()
	}
	if c.FromAccount != nil {
		t.FromAccount = *c.FromAccount
	}
	if c.ToAccount != nil {
		t.ToAccount = *c.ToAccount
	}
	if c.Note != nil {
		t.Note = strings.TrimSpace(*c.Note)
	}
	if c.Date != nil {
		d, err := date.Parse(strings.TrimSpace(*c.Date))
		if err != nil {
			return s
		}
		t.Date = d
	}
	switch {
	case c.CategoryID != nil:
		t.CategoryID = resolveCategory(s, *c.CategoryID, "")
	case c.Category != nil:
		t.CategoryID = categoryIDByName(s, *c.Category)
	}
	if t.Type != Opening && t.CategoryID == "" {
		t.CategoryID = UncategorizedID
	}
	// the cycle follows a new date, otherwise it is kept as is.
	if c.Date != nil {
		t.CycleID = DeriveCycleID(t.Date)
	}
	if c.CycleID != nil && c.CycleID.Valid() {
		t.CycleID = *c.CycleID
	}
	clearUnusedSides(&t)
	if !validTransaction(s, t) {
		return s
	}

	next := *s
	next.Transactions = slices.Clone(s.Transactions)
	next.Transactions[i] = t
	return RecalculateBalances(&next)
}

func (e *Engine) deleteTransaction(s *State, c DeleteTransaction) *State {
	if s.Transaction(c.ID) == nil {
		return s
	}
	next := *s
	next.Transactions = slices.DeleteFunc(slices.Clone(s.Transactions), func(t Transaction) bool { return t.ID == c.ID })
	return RecalculateBalances(&next)
}

func (e *Engine) addAccount(s *State, c AddAccount) *State {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "New Account"
	}
	base := Account{ID: e.newID(), Name: name}
	next := *s
	if c.Balance != nil {
		switch {
		case c.Balance.IsPositive():
			cycle := e.CurrentCycle()
			next.Transactions = append(slices.Clone(s.Transactions), openingTransaction(e.newID(), base.ID, cycle, *c.Balance))
		case c.Balance.IsNegative():
			// an opening balance cannot be negative, an overdraft stays in the base.
			base.Balance = *c.Balance
		}
	}
	next.BaseAccounts = append(slices.Clone(s.BaseAccounts), base)
	return RecalculateBalances(&next)
}

func (e *Engine) renameAccount(s *State, c RenameAccount) *State {
	name := strings.TrimSpace(c.Name)
	if name == "" || s.Account(c.ID) == nil {
		return s
	}
	rename := func(list []Account) []Account {
		list = slices.Clone(list)
		for i := range list {
			if list[i].ID == c.ID {
				list[i].Name = name
			}
		}
		return list
	}
	next := *s
	next.Accounts = rename(s.Accounts)
	next.BaseAccounts = rename(s.BaseAccounts)
	return &next
}

func (e *Engine) setOpeningBalance(s *State, c SetOpeningBalance) *State {
	cycle := c.CycleID
	if cycle == "" {
		cycle = e.CurrentCycle()
	}
	if c.Amount == nil || c.Amount.IsNegative() || !cycle.Valid() || s.Account(c.AccountID) == nil {
		return s
	}
	isTarget := func(t Transaction) bool {
		return t.Type == Opening && t.ToAccount == c.AccountID && t.CycleID == cycle
	}
	if c.Amount.IsZero() && !slices.ContainsFunc(s.Transactions, isTarget) {
		return s
	}

	next := *s
	next.Transactions = slices.DeleteFunc(slices.Clone(s.Transactions), isTarget)
	if c.Amount.IsPositive() {
		next.Transactions = append(next.Transactions, openingTransaction(e.newID(), c.AccountID, cycle, *c.Amount))
	}
	return RecalculateBalances(&next)
}

func (e *Engine) adjustAccountBalance(s *State, c AdjustAccountBalance) *State {
	current := s.Account(c.AccountID)
	i := slices.IndexFunc(s.BaseAccounts, func(a Account) bool { return a.ID == c.AccountID })
	if c.TargetBalance == nil || current == nil || i < 0 {
		return s
	}
	delta := c.TargetBalance.Sub(current.Balance)
	if delta.IsZero() {
		return s
	}
	next := *s
	next.BaseAccounts = slices.Clone(s.BaseAccounts)
	next.BaseAccounts[i].Balance = next.BaseAccounts[i].Balance.Add(delta)
	return RecalculateBalances(&next)
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// categoryID returns a unique "cat-<slug>" id for a category name.
// Collisions get a "-2", "-3"... suffix.
func (e *Engine) categoryID(s *State, name string) string {
	slug := strings.Trim(slugSeparators.ReplaceAllString(normalizeName(name), "-"), "-")
	base := "cat-" + slug
	if slug == "" {
		base = "cat-" + e.newID()
	}
	candidate := base
	for counter := 2; s.Category(candidate) != nil; counter++ {
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
	return candidate
}

func (e *Engine) addCategory(s *State, c AddCategory) *State {
	name := strings.TrimSpace(c.Name)
	if name == "" || s.CategoryByName(name) != nil {
		return s
	}
	kind := c.Type
	switch kind {
	case "":
		kind = ExpenseCategory
	case IncomeCategory, ExpenseCategory:
	default:
		return s
	}
	id := strings.TrimSpace(c.ID)
	if id == "" || s.Category(id) != nil {
		id = e.categoryID(s, name)
	}
	next := *s
	next.Categories = append(slices.Clone(s.Categories), Category{ID: id, Name: name, Type: kind})
	return &next
}

func (e *Engine) updateCategory(s *State, c UpdateCategory) *State {
	i := slices.IndexFunc(s.Categories, func(cat Category) bool { return cat.ID == c.ID })
	if c.ID == "" || i < 0 {
		return s
	}
	updated := s.Categories[i]
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return s
		}
		if other := s.CategoryByName(name); other != nil && other.ID != c.ID {
			return s
		}
		updated.Name = name
	}
	if c.Type != nil {
		switch *c.Type {
		case IncomeCategory, ExpenseCategory:
			updated.Type = *c.Type
		default:
			return s
		}
	}
	if updated == s.Categories[i] {
		return s
	}
	next := *s
	next.Categories = slices.Clone(s.Categories)
	next.Categories[i] = updated
	return &next
}

func (e *Engine) setCategoryDisabled(s *State, id string, disabled bool) *State {
	i := slices.IndexFunc(s.Categories, func(c Category) bool { return c.ID == id })
	if id == "" || i < 0 || s.Categories[i].Disabled == disabled {
		return s
	}
	if id == UncategorizedID && disabled {
		return s
	}
	next := *s
	next.Categories = slices.Clone(s.Categories)
	next.Categories[i].Disabled = disabled
	return &next
}

func (e *Engine) deleteCategory(s *State, c DeleteCategory) *State {
	if c.ID == UncategorizedID || s.Category(c.ID) == nil || s.CategoryUsage(c.ID) > 0 {
		return s
	}
	next := *s
	next.Categories = slices.DeleteFunc(slices.Clone(s.Categories), func(cat Category) bool { return cat.ID == c.ID })
	next.Budgets = make([]BudgetProfile, len(s.Budgets))
	for i, p := range s.Budgets {
		next.Budgets[i] = p
		if _, ok := p.Budgets[c.ID]; ok {
			next.Budgets[i].Budgets = maps.Clone(p.Budgets)
			delete(next.Budgets[i].Budgets, c.ID)
		}
	}
	return &next
}

func (e *Engine) updateBudget(s *State, c UpdateBudget) *State {
	cycle := c.CycleID
	if cycle == "" {
		cycle = e.CurrentCycle()
	}
	if c.Amount == nil || c.Amount.IsNegative() || !cycle.Valid() || s.Category(c.CategoryID) == nil {
		return s
	}
	next := *s
	next.Budgets = slices.Clone(s.Budgets)
	i := slices.IndexFunc(next.Budgets, func(p BudgetProfile) bool { return p.CycleID == cycle })
	if i < 0 {
		next.Budgets = append(next.Budgets, BudgetProfile{CycleID: cycle, Budgets: map[string]decimal.Decimal{}})
		i = len(next.Budgets) - 1
	} else {
		next.Budgets[i].Budgets = maps.Clone(next.Budgets[i].Budgets)
		if next.Budgets[i].Budgets == nil {
			next.Budgets[i].Budgets = map[string]decimal.Decimal{}
		}
	}
	next.Budgets[i].Budgets[c.CategoryID] = *c.Amount
	return &next
}

func (e *Engine) ensureBudgetProfile(s *State, c EnsureBudgetProfile) *State {
	if !c.CycleID.Valid() || s.Budget(c.CycleID) != nil {
		return s
	}
	next := *s
	next.Budgets = append(slices.Clone(s.Budgets), BudgetProfile{CycleID: c.CycleID, Budgets: map[string]decimal.Decimal{}})
	return &next
}

func (e *Engine) addPlanningCost(s *State, c AddPlanningCost) *State {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return s
	}
	p := PlanningCost{
		ID:         e.newID(),
		Name:       name,
		CategoryID: c.CategoryID,
		BillingDay: clampBillingDay(c.BillingDay),
		CycleID:    c.CycleID,
		Status:     c.Status,
	}
	if c.Amount != nil {
		p.Amount = c.Amount.Abs()
	}
	if s.Category(p.CategoryID) == nil {
		p.CategoryID = UncategorizedID
	}
	if !p.CycleID.Valid() {
		p.CycleID = e.CurrentCycle()
	}
	if !p.Status.Valid() {
		p.Status = Planned
	}
	next := *s
	next.PlanningCosts = append(slices.Clone(s.PlanningCosts), p)
	return &next
}

func (e *Engine) updatePlanningCost(s *State, c UpdatePlanningCost) *State {
	i := slices.IndexFunc(s.PlanningCosts, func(p PlanningCost) bool { return p.ID == c.ID })
	if c.ID == "" || i < 0 {
		return s
	}
	p := s.PlanningCosts[i]
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		p.Name = strings.TrimSpace(*c.Name)
	}
	if c.Amount != nil {
		p.Amount = c.Amount.Abs()
	}
	if c.CategoryID != nil && s.Category(*c.CategoryID) != nil {
		p.CategoryID = *c.CategoryID
	}
	if c.BillingDay != nil {
		p.BillingDay = clampBillingDay(*c.BillingDay)
	}
	if c.CycleID != nil && c.CycleID.Valid() {
		p.CycleID = *c.CycleID
	}
	if c.Status != nil {
		if !c.Status.Valid() {
			return s
		}
		p.Status = *c.Status
	}
	if p == s.PlanningCosts[i] {
		return s
	}
	next := *s
	next.PlanningCosts = slices.Clone(s.PlanningCosts)
	next.PlanningCosts[i] = p
	return &next
}

func (e *Engine) deletePlanningCost(s *State, c DeletePlanningCost) *State {
	if s.PlanningCost(c.ID) == nil {
		return s
	}
	next := *s
	next.PlanningCosts = slices.DeleteFunc(slices.Clone(s.PlanningCosts), func(p PlanningCost) bool { return p.ID == c.ID })
	return &next
}

func (e *Engine) payPlanningCost(s *State, c PayPlanningCost) *State {
	i := slices.IndexFunc(s.PlanningCosts, func(p PlanningCost) bool { return p.ID == c.PlanningCostID })
	if c.PlanningCostID == "" || i < 0 || s.Account(c.AccountID) == nil {
		return s
	}
	cost := s.PlanningCosts[i]
	if cost.Status == Done {
		return s
	}
	t := Transaction{
		ID:             e.newID(),
		Type:           Expense,
		Amount:         cost.Amount,
		FromAccount:    c.AccountID,
		CategoryID:     cost.CategoryID,
		CycleID:        cost.CycleID,
		Note:           cost.Name,
		Date:           parseDateOr(c.Date, e.today()),
		PlanningCostID: cost.ID,
	}
	next := *s
	next.Transactions = append(slices.Clone(s.Transactions), t)
	next.PlanningCosts = slices.Clone(s.PlanningCosts)
	next.PlanningCosts[i].Status = Done
	return RecalculateBalances(&next)
}
