package cmd

import (
	"context"
	"flag"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

// cycleFlag is the -c flag shared by the reports.
type cycleFlag struct {
	cycle string
}

func (c *cycleFlag) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cycle, "c", "", `Cycle to report on: a cycle like 2026-02, a date in the cycle, or "all". Defaults to the current cycle.`)
}

// report prints a markdown report of the selected cycle.
func report(ctx context.Context, selector string, md func(*finance.State, finance.CycleID, renderer.Options) string) subcommands.ExitStatus {
	return run(ctx, func(b *book) error {
		cycle, err := b.engine.SelectCycle(selector)
		if err != nil {
			return err
		}
		printMarkdown(md(b.State(), cycle, b.render()))
		return nil
	})
}

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct{ cycleFlag }

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the dashboard of a cycle" }
func (*summaryCmd) Usage() string {
	return `fdash summary [-c <cycle>]

  Displays the headline figures of a cycle: balances, cash flow, budget
  usage and the costs still planned.
`
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, c.cycle, renderer.DashboardMarkdown)
}

type accountsCmd struct{ cycleFlag }

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts with their balance" }
func (*accountsCmd) Usage() string {
	return `fdash accounts [-c <cycle>]

  Lists accounts with their current balance and the income and expenses
  recorded on them during the cycle.
`
}

func (c *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, c.cycle, renderer.AccountsMarkdown)
}

type budgetCmd struct{ cycleFlag }

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "compare the budget of a cycle with the spending" }
func (*budgetCmd) Usage() string {
	return `fdash budget [-c <cycle>]

  Lists expense categories with their budget, what was spent and what is left.
`
}

func (c *budgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, c.cycle, renderer.BudgetMarkdown)
}

type planningCmd struct{ cycleFlag }

func (*planningCmd) Name() string     { return "planning" }
func (*planningCmd) Synopsis() string { return "list the planned costs of a cycle" }
func (*planningCmd) Usage() string {
	return `fdash planning [-c <cycle>]

  Lists the recurring costs planned for a cycle, by billing day.
`
}

func (c *planningCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, c.cycle, renderer.PlanningMarkdown)
}
