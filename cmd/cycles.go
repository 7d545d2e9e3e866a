package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type cyclesCmd struct {
	cycleFlag
	n int
}

func (*cyclesCmd) Name() string     { return "cycles" }
func (*cyclesCmd) Synopsis() string { return "list billing cycles with their dates" }
func (*cyclesCmd) Usage() string {
	return `fdash cycles [-c <cycle>] [-n <count>]

  Lists the cycles around a cycle. A cycle is named after the month it ends
  in and runs from the 27th of the previous month to the 26th.
`
}

func (c *cyclesCmd) SetFlags(f *flag.FlagSet) {
	c.cycleFlag.SetFlags(f)
	f.IntVar(&c.n, "n", 3, "Number of cycles listed before and after.")
}

func (c *cyclesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.n < 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must not be negative.")
		return subcommands.ExitUsageError
	}
	return run(ctx, func(b *book) error {
		center, err := b.engine.SelectCycle(c.cycle)
		if err != nil {
			return err
		}
		current := b.engine.CurrentCycle()
		if center == "" {
			center = current
		}
		printMarkdown(renderer.CyclesMarkdown(current, center, c.n))
		return nil
	})
}
