package finance

import (
	"testing"

	"github.com/etnz/finance/date"
)

func TestApply_AddTransaction(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := twoAccounts()

	s = e.Apply(s, AddTransaction{Type: Expense, Amount: P("-120"), FromAccount: "bank", ToAccount: "wallet", Category: " food ", Date: "2026-01-27", Note: "Dinner"})
	if len(s.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(s.Transactions))
	}
	tx := s.Transactions[0]
	want := Transaction{
		ID:          "id-1",
		Type:        Expense,
		Amount:      D("120"),
		FromAccount: "bank",
		CategoryID:  "cat-food",
		CycleID:     "2026-02",
		Note:        "Dinner",
		Date:        date.MustParse("2026-01-27"),
	}
	if diff := diffState(&State{Transactions: []Transaction{want}}, &State{Transactions: []Transaction{tx}}); diff != "" {
		t.Errorf("transaction mismatch (-want +got):\n%s", diff)
	}
	if got := balanceOf(t, s, "bank"); !got.Equal(D("880")) {
		t.Errorf("bank = %s, want 880", got)
	}
	if got := balanceOf(t, s, "wallet"); !got.Equal(D("50")) {
		t.Errorf("wallet = %s, want 50", got)
	}
}

func TestApply_AddTransactionDefaults(t *testing.T) {
	e := newTestEngine("2026-01-28")
	s := e.Apply(twoAccounts(), AddTransaction{Amount: P("10"), FromAccount: "wallet", Date: "someday", CategoryID: "cat-nope"})
	tx := s.Transactions[0]
	if tx.Type != Expense || tx.Date != date.MustParse("2026-01-28") || tx.CycleID != "2026-02" || tx.CategoryID != UncategorizedID {
		t.Errorf("defaults not applied: %+v", tx)
	}

	s = e.Apply(s, AddTransaction{Type: Income, Amount: P("10"), ToAccount: "wallet", Date: "2026-01-05", CycleID: "2025-12"})
	if got := s.Transactions[1].CycleID; got != "2025-12" {
		t.Errorf("explicit cycle = %s, want 2025-12", got)
	}
}

func TestApply_AddTransactionRejected(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddTransaction
	}{
		{"missing amount", AddTransaction{Type: Expense, FromAccount: "bank"}},
		{"expense without source", AddTransaction{Type: Expense, Amount: P("1"), ToAccount: "bank"}},
		{"income without destination", AddTransaction{Type: Income, Amount: P("1"), FromAccount: "bank"}},
		{"transfer to itself", AddTransaction{Type: Transfer, Amount: P("1"), FromAccount: "bank", ToAccount: "bank"}},
		{"transfer to unknown", AddTransaction{Type: Transfer, Amount: P("1"), FromAccount: "bank", ToAccount: "nope"}},
		{"opening", AddTransaction{Type: Opening, Amount: P("1"), ToAccount: "bank"}},
		{"unknown type", AddTransaction{Type: "gift", Amount: P("1"), ToAccount: "bank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoAccounts()
			if got := newTestEngine("2026-01-15").Apply(s, tt.cmd); got != s {
				t.Errorf("Apply(%+v) changed the state", tt.cmd)
			}
		})
	}
}

func TestApply_UpdateTransaction(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), AddTransaction{Type: Expense, Amount: P("100"), FromAccount: "bank", Date: "2026-01-10", Note: "groceries"})
	id := s.Transactions[0].ID

	transfer, wallet, day := Transfer, "wallet", "2026-01-30"
	s = e.Apply(s, UpdateTransaction{ID: id, Type: &transfer, ToAccount: &wallet, Amount: P("40"), Date: &day})
	tx := s.Transactions[0]
	if tx.Type != Transfer || tx.ToAccount != "wallet" || tx.FromAccount != "bank" || tx.Note != "groceries" {
		t.Errorf("patched transaction = %+v", tx)
	}
	if tx.CycleID != "2026-02" {
		t.Errorf("cycle = %s, want it derived from the new date", tx.CycleID)
	}
	if !balanceOf(t, s, "bank").Equal(D("960")) || !balanceOf(t, s, "wallet").Equal(D("90")) {
		t.Errorf("balances = %s, %s; want 960, 90", balanceOf(t, s, "bank"), balanceOf(t, s, "wallet"))
	}

	// an explicit cycle overrides the derived one.
	cycle := CycleID("2026-01")
	s = e.Apply(s, UpdateTransaction{ID: id, CycleID: &cycle})
	if got := s.Transactions[0].CycleID; got != "2026-01" {
		t.Errorf("cycle = %s, want 2026-01", got)
	}

	// invalid results are refused.
	empty := ""
	if got := e.Apply(s, UpdateTransaction{ID: id, FromAccount: &empty}); got != s {
		t.Errorf("a transfer without source must be refused")
	}
	opening := Opening
	if got := e.Apply(s, UpdateTransaction{ID: id, Type: &opening}); got != s {
		t.Errorf("a transaction cannot become an opening balance")
	}
	if got := e.Apply(s, UpdateTransaction{ID: "unknown", Note: &empty}); got != s {
		t.Errorf("unknown id must be a no-op")
	}
}

func TestApply_DeleteTransaction(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), AddTransaction{Type: Income, Amount: P("100"), ToAccount: "wallet"})
	s = e.Apply(s, DeleteTransaction{ID: s.Transactions[0].ID})
	if len(s.Transactions) != 0 || !balanceOf(t, s, "wallet").Equal(D("50")) {
		t.Errorf("delete did not restore the balance: %s", balanceOf(t, s, "wallet"))
	}
	if got := e.Apply(s, DeleteTransaction{ID: "nope"}); got != s {
		t.Errorf("deleting an unknown transaction must be a no-op")
	}
}

func TestApply_AddAccount(t *testing.T) {
	e := newTestEngine("2026-01-27")
	s := e.Apply(twoAccounts(), AddAccount{Name: "Savings", Balance: P("500")})
	a := s.Account("id-1")
	if a == nil || a.Name != "Savings" || !a.Balance.Equal(D("500")) {
		t.Fatalf("new account = %+v", a)
	}
	if len(s.BaseAccounts) != 3 || !s.BaseAccounts[2].Balance.IsZero() {
		t.Errorf("base account = %+v, want a zero base", s.BaseAccounts[2])
	}
	opening := s.Transactions[0]
	if opening.Type != Opening || opening.ToAccount != "id-1" || opening.CycleID != "2026-02" || opening.Date != date.MustParse("2026-02-01") || opening.Note != "Opening Balance" {
		t.Errorf("opening transaction = %+v", opening)
	}

	s = e.Apply(s, AddAccount{})
	if a := s.Account("id-3"); a == nil || a.Name != "New Account" || !a.Balance.IsZero() {
		t.Errorf("default account = %+v", a)
	}
	if len(s.Transactions) != 1 {
		t.Errorf("an account without balance must not get an opening")
	}

	s = e.Apply(s, AddAccount{Name: "Card", Balance: P("-30")})
	if got := balanceOf(t, s, "id-4"); !got.Equal(D("-30")) {
		t.Errorf("card = %s, want -30", got)
	}
}

func TestApply_RenameAccount(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), RenameAccount{ID: "bank", Name: " Main Bank "})
	if s.Account("bank").Name != "Main Bank" || s.BaseAccounts[0].Name != "Main Bank" {
		t.Errorf("rename must update accounts and base accounts")
	}
	s = RecalculateBalances(s)
	if s.Account("bank").Name != "Main Bank" {
		t.Errorf("rename lost after recalculation")
	}
}

func TestApply_SetOpeningBalanceRoundTrip(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := twoAccounts()

	once := e.Apply(s, SetOpeningBalance{AccountID: "wallet", Amount: P("250")})
	if got := balanceOf(t, once, "wallet"); !got.Equal(D("300")) {
		t.Errorf("wallet = %s, want 300", got)
	}
	twice := e.Apply(once, SetOpeningBalance{AccountID: "wallet", Amount: P("100")})
	if len(twice.Transactions) != 1 || !balanceOf(t, twice, "wallet").Equal(D("150")) {
		t.Errorf("opening must be replaced, got %d transactions and %s", len(twice.Transactions), balanceOf(t, twice, "wallet"))
	}
	removed := e.Apply(twice, SetOpeningBalance{AccountID: "wallet", Amount: P("0")})
	if diff := diffState(s, removed); diff != "" {
		t.Errorf("setting then removing an opening must give back the state (-want +got):\n%s", diff)
	}

	for _, cmd := range []SetOpeningBalance{
		{AccountID: "wallet", Amount: P("-1")},
		{AccountID: "wallet"},
		{AccountID: "nope", Amount: P("1")},
		{AccountID: "wallet", Amount: P("1"), CycleID: "soon"},
		{AccountID: "wallet", Amount: P("0")},
	} {
		if got := e.Apply(s, cmd); got != s {
			t.Errorf("Apply(%+v) must be a no-op", cmd)
		}
	}
}

func TestApply_AdjustAccountBalance(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), AddTransaction{Type: Expense, Amount: P("300"), FromAccount: "bank"})
	s = e.Apply(s, AdjustAccountBalance{AccountID: "bank", TargetBalance: P("1234.56")})
	if got := balanceOf(t, s, "bank"); !got.Equal(D("1234.56")) {
		t.Errorf("bank = %s, want 1234.56", got)
	}
	if got := s.BaseAccounts[0].Balance; !got.Equal(D("1534.56")) {
		t.Errorf("base = %s, want 1534.56", got)
	}
	if len(s.Transactions) != 1 {
		t.Errorf("adjusting must not record transactions")
	}
	if got := e.Apply(s, AdjustAccountBalance{AccountID: "nope", TargetBalance: P("1")}); got != s {
		t.Errorf("unknown account must be a no-op")
	}
}

func TestApply_Categories(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := twoAccounts()

	s = e.Apply(s, AddCategory{Name: " Eating Out! "})
	c := s.CategoryByName("eating out!")
	if c == nil || c.ID != "cat-eating-out" || c.Type != ExpenseCategory {
		t.Fatalf("added category = %+v", c)
	}
	if got := e.Apply(s, AddCategory{Name: "EATING OUT!"}); got != s {
		t.Errorf("names must be unique ignoring case")
	}
	s = e.Apply(s, AddCategory{Name: "Eating-Out", Type: IncomeCategory})
	if c := s.CategoryByName("eating-out"); c == nil || c.ID != "cat-eating-out-2" || c.Type != IncomeCategory {
		t.Errorf("colliding slug = %+v, want cat-eating-out-2", c)
	}

	s = e.Apply(s, RenameCategory{ID: "cat-food", Name: "Groceries"})
	if s.Category("cat-food").Name != "Groceries" {
		t.Errorf("rename failed")
	}
	if got := e.Apply(s, RenameCategory{ID: "cat-food", Name: "salary"}); got != s {
		t.Errorf("renaming onto another category name must be a no-op")
	}
	income := IncomeCategory
	s = e.Apply(s, UpdateCategory{ID: "cat-food", Type: &income})
	if s.Category("cat-food").Type != IncomeCategory {
		t.Errorf("retype failed")
	}

	s = e.Apply(s, DisableCategory{ID: "cat-food"})
	if !s.Category("cat-food").Disabled {
		t.Errorf("disable failed")
	}
	s = e.Apply(s, EnableCategory{ID: "cat-food"})
	if s.Category("cat-food").Disabled {
		t.Errorf("enable failed")
	}
}

func TestApply_UncategorizedIsProtected(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := twoAccounts()
	for _, cmd := range []Command{DisableCategory{ID: UncategorizedID}, DeleteCategory{ID: UncategorizedID}} {
		if got := e.Apply(s, cmd); got != s {
			t.Errorf("%s on the reserved category must be a no-op", cmd.What())
		}
	}
}

func TestApply_DeleteCategory(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), UpdateBudget{CycleID: "2026-01", CategoryID: "cat-food", Amount: P("0")})
	s = e.Apply(s, DeleteCategory{ID: "cat-food"})
	if s.Category("cat-food") != nil {
		t.Fatalf("unreferenced category was not deleted")
	}
	if _, ok := s.Budget("2026-01").Budgets["cat-food"]; ok {
		t.Errorf("zero budget entry must be removed with its category")
	}

	s = e.Apply(s, AddTransaction{Type: Income, Amount: P("1"), ToAccount: "bank", CategoryID: "cat-salary"})
	if got := e.Apply(s, DeleteCategory{ID: "cat-salary"}); got != s {
		t.Errorf("a referenced category must not be deleted")
	}
}

func TestApply_Budgets(t *testing.T) {
	e := newTestEngine("2026-01-28")
	s := e.Apply(twoAccounts(), UpdateBudget{CategoryID: "cat-food", Amount: P("3200")})
	p := s.Budget("2026-02")
	if p == nil || !p.Budgets["cat-food"].Equal(D("3200")) {
		t.Fatalf("budget profile of the current cycle = %+v", p)
	}
	before := s
	s = e.Apply(s, UpdateBudget{CycleID: "2026-02", CategoryID: "cat-food", Amount: P("100")})
	if !before.Budget("2026-02").Budgets["cat-food"].Equal(D("3200")) {
		t.Errorf("updating a budget modified the previous state")
	}
	for _, cmd := range []UpdateBudget{
		{CategoryID: "cat-food", Amount: P("-1")},
		{CategoryID: "cat-food"},
		{CategoryID: "cat-nope", Amount: P("1")},
		{CycleID: "next", CategoryID: "cat-food", Amount: P("1")},
	} {
		if got := e.Apply(s, cmd); got != s {
			t.Errorf("Apply(%+v) must be a no-op", cmd)
		}
	}

	s = e.Apply(s, EnsureBudgetProfile{CycleID: "2026-05"})
	if p := s.Budget("2026-05"); p == nil || len(p.Budgets) != 0 {
		t.Errorf("ensured profile = %+v", p)
	}
	if got := e.Apply(s, EnsureBudgetProfile{CycleID: "2026-05"}); got != s {
		t.Errorf("ensuring an existing profile must be a no-op")
	}
}

func TestApply_PayPlanningCost(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := twoAccounts()
	s = e.Apply(s, AddPlanningCost{Name: "Rent", Amount: P("300"), CategoryID: "cat-food", BillingDay: 40})
	cost := s.PlanningCosts[0]
	if cost.BillingDay != 31 || cost.Status != Planned || cost.CycleID != "2026-01" {
		t.Fatalf("planning cost = %+v", cost)
	}

	paid := e.Apply(s, PayPlanningCost{PlanningCostID: cost.ID, AccountID: "bank", Date: "2026-01-20"})
	if got := balanceOf(t, paid, "bank"); !got.Equal(D("700")) {
		t.Errorf("bank = %s, want 700", got)
	}
	if len(paid.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(paid.Transactions))
	}
	tx := paid.Transactions[0]
	if tx.Type != Expense || tx.PlanningCostID != cost.ID || tx.CategoryID != "cat-food" || tx.CycleID != "2026-01" || tx.Note != "Rent" {
		t.Errorf("payment = %+v", tx)
	}
	if paid.PlanningCost(cost.ID).Status != Done {
		t.Errorf("cost must be done once paid")
	}
	if s.PlanningCost(cost.ID).Status != Planned {
		t.Errorf("paying modified the previous state")
	}

	for _, cmd := range []PayPlanningCost{
		{PlanningCostID: cost.ID, AccountID: "bank"},
		{PlanningCostID: "nope", AccountID: "bank"},
	} {
		if got := e.Apply(paid, cmd); got != paid {
			t.Errorf("Apply(%+v) must be a no-op", cmd)
		}
	}
	if got := e.Apply(s, PayPlanningCost{PlanningCostID: cost.ID, AccountID: "nope"}); got != s {
		t.Errorf("paying from an unknown account must be a no-op")
	}
}

func TestApply_UpdateTransactionKeepsCycle(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), AddPlanningCost{Name: "Rent", Amount: P("300"), CategoryID: "cat-food", CycleID: "2026-01"})
	// paid after the cycle boundary, the payment still belongs to the cost's cycle.
	s = e.Apply(s, PayPlanningCost{PlanningCostID: s.PlanningCosts[0].ID, AccountID: "bank", Date: "2026-01-30"})
	id := s.Transactions[0].ID
	if got := s.Transactions[0].CycleID; got != "2026-01" {
		t.Fatalf("payment cycle = %s, want 2026-01", got)
	}

	note, amount := "rent of january", P("310")
	s = e.Apply(s, UpdateTransaction{ID: id, Note: &note, Amount: amount})
	tx := s.Transaction(id)
	if tx.Note != note || !tx.Amount.Equal(D("310")) {
		t.Fatalf("patched transaction = %+v", tx)
	}
	if tx.CycleID != "2026-01" {
		t.Errorf("cycle = %s, want 2026-01 when the date is unchanged", tx.CycleID)
	}

	day := "2026-01-30"
	s = e.Apply(s, UpdateTransaction{ID: id, Date: &day})
	if got := s.Transaction(id).CycleID; got != DeriveCycleID(date.MustParse(day)) {
		t.Errorf("cycle = %s, want it derived from the date once the date is sent", got)
	}
}

func TestApply_PlanningCostLifecycle(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), AddPlanningCost{Name: "Gym", Status: "bogus"})
	id := s.PlanningCosts[0].ID
	if p := s.PlanningCosts[0]; p.Status != Planned || p.CategoryID != UncategorizedID || p.BillingDay != 1 || !p.Amount.IsZero() {
		t.Errorf("defaults = %+v", p)
	}

	name, day := "Gym+", 0
	s = e.Apply(s, UpdatePlanningCost{ID: id, Name: &name, Amount: P("-45"), BillingDay: &day})
	if p := s.PlanningCost(id); p.Name != "Gym+" || !p.Amount.Equal(D("45")) || p.BillingDay != 1 {
		t.Errorf("updated = %+v", p)
	}
	s = e.Apply(s, SetPlanningStatus{ID: id, Status: Inactive})
	if s.PlanningCost(id).Status != Inactive {
		t.Errorf("status not changed")
	}
	if got := e.Apply(s, SetPlanningStatus{ID: id, Status: "paused"}); got != s {
		t.Errorf("invalid status must be a no-op")
	}
	s = e.Apply(s, DeletePlanningCost{ID: id})
	if len(s.PlanningCosts) != 0 {
		t.Errorf("delete failed")
	}
	if got := e.Apply(s, AddPlanningCost{Name: "  "}); got != s {
		t.Errorf("a planning cost needs a name")
	}
}

type unknownCommand struct{}

func (unknownCommand) What() CommandType { return "EXPLODE" }

func TestApply_UnknownCommand(t *testing.T) {
	s := twoAccounts()
	e := newTestEngine("2026-01-15")
	if got := e.Apply(s, unknownCommand{}); got != s {
		t.Errorf("unknown commands must return the state unchanged")
	}
	if got := e.Apply(s, nil); got != s {
		t.Errorf("nil command must return the state unchanged")
	}
}

func TestApply_PointerCommands(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(twoAccounts(), &AddTransaction{Type: Income, Amount: P("5"), ToAccount: "wallet"})
	if got := balanceOf(t, s, "wallet"); !got.Equal(D("55")) {
		t.Errorf("wallet = %s, want 55", got)
	}
}

func TestApply_RecalculateBalances(t *testing.T) {
	s := twoAccounts()
	s.Accounts[0].Balance = D("1")
	got := newTestEngine("2026-01-15").Apply(s, RecalculateBalancesCmd{})
	if err := CheckBalances(got); err != nil {
		t.Error(err)
	}
}

func TestApply_NilStatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Apply on a nil state must panic")
		}
	}()
	newTestEngine("2026-01-15").Apply(nil, RecalculateBalancesCmd{})
}
