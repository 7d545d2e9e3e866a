package finance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ApplyTransaction adds the effect of tx multiplied by direction (+1 or -1)
// to the accounts.
//
// Opening and income transactions credit ToAccount, expenses debit
// FromAccount and transfers do both. A side referencing an unknown account is
// skipped, and so are transactions of an unknown type.
func ApplyTransaction(accounts []Account, tx Transaction, direction int) {
	amount := tx.Amount.Mul(decimal.NewFromInt(int64(direction)))
	if amount.IsZero() {
		return
	}
	switch tx.Type {
	case Opening, Income:
		adjustAccount(accounts, tx.ToAccount, amount)
	case Expense:
		adjustAccount(accounts, tx.FromAccount, amount.Neg())
	case Transfer:
		adjustAccount(accounts, tx.FromAccount, amount.Neg())
		adjustAccount(accounts, tx.ToAccount, amount)
	}
}

func adjustAccount(accounts []Account, id string, delta decimal.Decimal) {
	if id == "" {
		return
	}
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return
	}
	accounts[i].Balance = accounts[i].Balance.Add(delta)
}

// RecalculateBalances returns a copy of s whose accounts are the base accounts
// with every transaction replayed in log order.
//
// It is the only way account balances are produced.
func RecalculateBalances(s *State) *State {
	if s == nil {
		panic("finance: RecalculateBalances on a nil state")
	}
	next := *s
	next.Accounts = replay(s.BaseAccounts, s.Transactions, 1)
	return &next
}

// DeriveBaseAccounts computes the balances accounts had before transactions,
// by replaying the log backward.
func DeriveBaseAccounts(accounts []Account, transactions []Transaction) []Account {
	return replay(accounts, transactions, -1)
}

func replay(start []Account, transactions []Transaction, direction int) []Account {
	accounts := slices.Clone(start)
	if accounts == nil {
		accounts = []Account{}
	}
	for _, tx := range transactions {
		ApplyTransaction(accounts, tx, direction)
	}
	return accounts
}

// CheckBalances verifies that every account balance matches its base balance
// plus the transactions. It reports every drifting account.
func CheckBalances(s *State) error {
	want := replay(s.BaseAccounts, s.Transactions, 1)
	var errs []error
	if len(want) != len(s.Accounts) {
		errs = append(errs, fmt.Errorf("%d accounts for %d base accounts", len(s.Accounts), len(want)))
	}
	for _, w := range want {
		got := s.Account(w.ID)
		switch {
		case got == nil:
			errs = append(errs, fmt.Errorf("account %q has a base balance but no account", w.ID))
		case !got.Balance.Equal(w.Balance):
			errs = append(errs, fmt.Errorf("account %q balance is %s, replay gives %s", w.ID, got.Balance, w.Balance))
		}
	}
	return errors.Join(errs...)
}
