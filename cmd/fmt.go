package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	dry bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "migrates and normalizes the stored state"
}
func (*fmtCmd) Usage() string {
	return `fdash fmt [-n]

  Normalizes the state held in the store and writes it back: legacy fields
  are migrated, missing ids and cycles are filled in and balances are
  recomputed. Normalizing is idempotent, running it twice changes nothing.

Usage Examples:
# Prints the normalized state without saving it.
$ fdash fmt -n
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.dry, "n", false, "Print the normalized state instead of saving it.")
}

func (p *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(b *book) error {
		s := b.State()
		if err := finance.CheckBalances(s); err != nil {
			return fmt.Errorf("normalized state is inconsistent: %w", err)
		}
		if p.dry {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		if err := store.SaveState(ctx, b.store, s); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✅ Successfully normalized %d accounts and %d transactions.\n", len(s.Accounts), len(s.Transactions))
		return nil
	})
}
