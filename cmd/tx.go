package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	cycleFlag
	n int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions of a cycle" }
func (*txCmd) Usage() string {
	return `fdash tx [-c <cycle>] [-n <count>]

  Lists transactions from the most recent, with their id for edit-tx and
  delete-tx.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	p.cycleFlag.SetFlags(f)
	f.IntVar(&p.n, "n", 0, "Show only the N most recent transactions.")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.n < 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must not be negative.")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(b *book) error {
		cycle, err := b.engine.SelectCycle(p.cycle)
		if err != nil {
			return err
		}
		opts := b.render()
		opts.Limit = p.n
		printMarkdown(renderer.TransactionsMarkdown(b.State(), cycle, opts))
		return nil
	})
}
