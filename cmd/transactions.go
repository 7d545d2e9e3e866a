package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/google/subcommands"
)

// txFlags are the flags common to the commands recording a transaction.
type txFlags struct {
	date     string
	amount   string
	category string
	cycle    string
	memo     string
}

func (c *txFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.amount, "a", "", "Amount of the transaction, positive.")
	f.StringVar(&c.category, "cat", "", "Category id or name.")
	f.StringVar(&c.cycle, "cycle", "", "Cycle the transaction belongs to. Defaults to the cycle of the date.")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

// transaction builds an AddTransaction from the flags, resolving names in s.
func (c *txFlags) transaction(s *finance.State, typ finance.TransactionType, from, to string) (finance.Command, error) {
	amount, err := parseAmount(c.amount)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, fmt.Errorf("-a is required")
	}
	tx := finance.AddTransaction{Type: typ, Amount: amount, Date: c.date, Note: c.memo}
	if tx.FromAccount, err = resolveAccount(s, from); err != nil {
		return nil, err
	}
	if tx.ToAccount, err = resolveAccount(s, to); err != nil {
		return nil, err
	}
	if tx.CategoryID, err = resolveCategory(s, c.category); err != nil {
		return nil, err
	}
	if c.cycle != "" {
		cycle, err := finance.ParseCycleID(c.cycle)
		if err != nil {
			return nil, err
		}
		tx.CycleID = cycle
	}
	return tx, nil
}

// --- Expense Command ---

type expenseCmd struct {
	txFlags
	from string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record money spent from an account" }
func (*expenseCmd) Usage() string {
	return `fdash expense -from <account> -a <amount> [-cat <category>] [-d <date>] [-m <memo>]

  Records an expense. Accounts and categories can be given by id or by name.

Usage Examples:
$ fdash expense -from "BK Bank" -a 308 -cat "Food and Drinks" -m "Yakiniku Like"
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.SetFlags(f)
	f.StringVar(&c.from, "from", "", "Account the money is spent from.")
}

func (c *expenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		return c.transaction(s, finance.Expense, c.from, "")
	})
}

// --- Income Command ---

type incomeCmd struct {
	txFlags
	to string
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "record money received on an account" }
func (*incomeCmd) Usage() string {
	return `fdash income -to <account> -a <amount> [-cat <category>] [-d <date>] [-m <memo>]

  Records an income.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.SetFlags(f)
	f.StringVar(&c.to, "to", "", "Account the money is received on.")
}

func (c *incomeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.to == "" || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		return c.transaction(s, finance.Income, "", c.to)
	})
}

// --- Transfer Command ---

type transferCmd struct {
	txFlags
	from, to string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `fdash transfer -from <account> -to <account> -a <amount> [-d <date>] [-m <memo>]

  Records a transfer. Transfers change balances but are neither income nor
  expense.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.SetFlags(f)
	f.StringVar(&c.from, "from", "", "Account the money leaves.")
	f.StringVar(&c.to, "to", "", "Account the money goes to.")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		return c.transaction(s, finance.Transfer, c.from, c.to)
	})
}

// --- Edit Command ---

type editTxCmd struct{}

// editable are the transaction fields edit-tx can change, by flag name.
var editable = []struct{ flag, usage string }{
	{"type", "New type: income, expense or transfer."},
	{"a", "New amount."},
	{"from", "New source account, \"\" to clear it."},
	{"to", "New destination account, \"\" to clear it."},
	{"cat", "New category id or name."},
	{"d", "New date."},
	{"cycle", "New cycle."},
	{"m", "New note."},
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "change fields of a transaction" }
func (*editTxCmd) Usage() string {
	return `fdash edit-tx [flags] <id>

  Changes the given fields of a transaction, the others are kept. Balances are
  recomputed from the edited transaction.
`
}

// SetFlags declares a flag per editable field. Only the flags set on the
// command line are changed.
func (c *editTxCmd) SetFlags(f *flag.FlagSet) {
	for _, e := range editable {
		f.String(e.flag, "", e.usage)
	}
}

func (c *editTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		return c.update(s, f)
	})
}

// update builds the UpdateTransaction for the flags set on f.
func (c *editTxCmd) update(s *finance.State, f *flag.FlagSet) (finance.Command, error) {
	u := finance.UpdateTransaction{ID: f.Arg(0)}
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		v := fl.Value.String()
		switch fl.Name {
		case "type":
			t := finance.TransactionType(v)
			u.Type = &t
		case "a":
			u.Amount, err = parseAmount(v)
		case "from":
			v, err = resolveAccount(s, v)
			u.FromAccount = &v
		case "to":
			v, err = resolveAccount(s, v)
			u.ToAccount = &v
		case "cat":
			v, err = resolveCategory(s, v)
			u.CategoryID = &v
		case "d":
			u.Date = &v
		case "cycle":
			cycle := finance.CycleID(v)
			u.CycleID = &cycle
		case "m":
			u.Note = &v
		}
	})
	if err != nil {
		return nil, err
	}
	if s.Transaction(u.ID) == nil {
		fmt.Fprintf(os.Stderr, "Warning: transaction %q does not exist.\n", u.ID)
	}
	return u, nil
}

// --- Delete Command ---

type deleteTxCmd struct{}

func (*deleteTxCmd) Name() string     { return "delete-tx" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction" }
func (*deleteTxCmd) Usage() string {
	return `fdash delete-tx <id>...

  Deletes transactions by id, see fdash tx for the ids.
`
}

func (*deleteTxCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if s := apply(ctx, finance.DeleteTransaction{ID: id}); s != subcommands.ExitSuccess {
			status = s
		}
	}
	return status
}
