// Package finance is the state engine of a personal finance dashboard.
//
// A State holds accounts, an ordered log of transactions, categories, budget
// profiles per cycle and planning costs. It is changed only through commands
// applied by an Engine:
//
//	e := finance.NewEngine()
//	s := e.Normalize(snapshot)
//	s = e.Apply(s, finance.AddTransaction{Type: finance.Expense, ...})
//
// Apply never modifies its input and returns the input itself when a command
// has no effect. Account balances are always the base balances plus the
// replay of every transaction, see RecalculateBalances.
//
// Budgets and reports are organised in cycles. A cycle runs from the 27th of
// a month to the 26th of the next one and is labelled by the month it ends
// in, "2026-02" runs from 2026-01-27 to 2026-02-26.
//
// Normalize migrates any persisted snapshot, including documents written by
// older versions, into a consistent State. The Dispatcher serializes
// commands coming from concurrent callers and hands every committed state to
// persistence hooks.
package finance
