package cmd

import (
	"context"
	"flag"

	"github.com/etnz/finance"
	"github.com/google/subcommands"
)

type setBudgetCmd struct {
	cycle    string
	category string
	amount   string
}

func (*setBudgetCmd) Name() string     { return "set-budget" }
func (*setBudgetCmd) Synopsis() string { return "set the budget of a category for a cycle" }
func (*setBudgetCmd) Usage() string {
	return `fdash set-budget -cat <category> -a <amount> [-c <cycle>]

  Sets what can be spent in a category during a cycle. A cycle without
  budget gets an empty one first.
`
}

func (c *setBudgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cycle, "c", "", "Cycle of the budget. Defaults to the current cycle.")
	f.StringVar(&c.category, "cat", "", "Category id or name.")
	f.StringVar(&c.amount, "a", "", "Budgeted amount.")
}

func (c *setBudgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.category == "" || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		id, err := resolveCategory(s, c.category)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(c.amount)
		if err != nil {
			return nil, err
		}
		cmd := finance.UpdateBudget{CategoryID: id, Amount: amount}
		if c.cycle != "" {
			if cmd.CycleID, err = finance.ParseCycleID(c.cycle); err != nil {
				return nil, err
			}
		}
		return cmd, nil
	})
}

type planCmd struct {
	id       string
	name     string
	amount   string
	category string
	day      int
	cycle    string
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "plan a recurring cost, or change one" }
func (*planCmd) Usage() string {
	return `fdash plan -n <name> -a <amount> [-cat <category>] [-day <billing day>] [-c <cycle>]
fdash plan -id <id> [-n <name>] [-a <amount>] [-cat <category>] [-day <billing day>] [-c <cycle>]

  Plans a cost for a cycle, or changes the given fields of an existing one.
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the planning cost to change.")
	f.StringVar(&c.name, "n", "", "Name of the cost.")
	f.StringVar(&c.amount, "a", "", "Expected amount.")
	f.StringVar(&c.category, "cat", "", "Category id or name.")
	f.IntVar(&c.day, "day", 0, "Day of the month the cost is billed, 1 to 31.")
	f.StringVar(&c.cycle, "c", "", "Cycle of the cost. Defaults to the current cycle.")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" && c.name == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		if c.id != "" {
			return c.update(s, f)
		}
		return c.add(s)
	})
}

func (c *planCmd) add(s *finance.State) (finance.Command, error) {
	category, err := resolveCategory(s, c.category)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return nil, err
	}
	cmd := finance.AddPlanningCost{Name: c.name, Amount: amount, CategoryID: category, BillingDay: c.day}
	if c.cycle != "" {
		if cmd.CycleID, err = finance.ParseCycleID(c.cycle); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

// update patches the fields whose flag is set on f.
func (c *planCmd) update(s *finance.State, f *flag.FlagSet) (finance.Command, error) {
	u := finance.UpdatePlanningCost{ID: c.id}
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "n":
			u.Name = &c.name
		case "a":
			u.Amount, err = parseAmount(c.amount)
		case "cat":
			var id string
			id, err = resolveCategory(s, c.category)
			u.CategoryID = &id
		case "day":
			u.BillingDay = &c.day
		case "c":
			var cycle finance.CycleID
			cycle, err = finance.ParseCycleID(c.cycle)
			u.CycleID = &cycle
		}
	})
	return u, err
}

type planStatusCmd struct {
	cycle string
}

func (*planStatusCmd) Name() string     { return "plan-status" }
func (*planStatusCmd) Synopsis() string { return "change the status of a planning cost, or delete it" }
func (*planStatusCmd) Usage() string {
	return `fdash plan-status [-c <cycle>] <cost> planned|inactive|done|delete

  Changes the status of a planning cost given by id, or by name in the cycle.
  Only planned costs count in the planned total.
`
}

func (c *planStatusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cycle, "c", "", "Cycle to look names up in. Defaults to the current cycle.")
}

func (c *planStatusCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return runWith(ctx, func(b *book, s *finance.State) (finance.Command, error) {
		cycle, err := b.engine.SelectCycle(c.cycle)
		if err != nil {
			return nil, err
		}
		id, err := resolvePlanningCost(s, f.Arg(0), cycle)
		if err != nil {
			return nil, err
		}
		if f.Arg(1) == "delete" {
			return finance.DeletePlanningCost{ID: id}, nil
		}
		return finance.SetPlanningStatus{ID: id, Status: finance.PlanningStatus(f.Arg(1))}, nil
	})
}

type payCmd struct {
	cycle   string
	account string
	date    string
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "pay a planning cost from an account" }
func (*payCmd) Usage() string {
	return `fdash pay -from <account> [-d <date>] [-c <cycle>] <cost>

  Records the expense of a planning cost and marks it done. The cost is given
  by id, or by name in the cycle.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "from", "", "Account paying the cost.")
	f.StringVar(&c.date, "d", "", "Payment date. Defaults to today.")
	f.StringVar(&c.cycle, "c", "", "Cycle to look names up in. Defaults to the current cycle.")
}

func (c *payCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.account == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return runWith(ctx, func(b *book, s *finance.State) (finance.Command, error) {
		cycle, err := b.engine.SelectCycle(c.cycle)
		if err != nil {
			return nil, err
		}
		id, err := resolvePlanningCost(s, f.Arg(0), cycle)
		if err != nil {
			return nil, err
		}
		account, err := resolveAccount(s, c.account)
		if err != nil {
			return nil, err
		}
		return finance.PayPlanningCost{PlanningCostID: id, AccountID: account, Date: c.date}, nil
	})
}
