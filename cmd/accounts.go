package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/finance"
	"github.com/google/subcommands"
)

type addAccountCmd struct {
	balance string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "open a new account" }
func (*addAccountCmd) Usage() string {
	return `fdash add-account [-b <balance>] <name>

  Opens an account. A positive balance is recorded as the opening balance of
  the current cycle.
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.balance, "b", "", "Initial balance of the account.")
}

func (c *addAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(*finance.State) (finance.Command, error) {
		balance, err := parseAmount(c.balance)
		return finance.AddAccount{Name: name, Balance: balance}, err
	})
}

type renameAccountCmd struct{}

func (*renameAccountCmd) Name() string     { return "rename-account" }
func (*renameAccountCmd) Synopsis() string { return "rename an account" }
func (*renameAccountCmd) Usage() string {
	return `fdash rename-account <account> <new name>
`
}

func (*renameAccountCmd) SetFlags(*flag.FlagSet) {}

func (c *renameAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		id, err := resolveAccount(s, f.Arg(0))
		return finance.RenameAccount{ID: id, Name: strings.Join(f.Args()[1:], " ")}, err
	})
}

type openingCmd struct {
	account string
	amount  string
	cycle   string
}

func (*openingCmd) Name() string     { return "opening" }
func (*openingCmd) Synopsis() string { return "set the opening balance of an account for a cycle" }
func (*openingCmd) Usage() string {
	return `fdash opening -acc <account> -a <amount> [-c <cycle>]

  Replaces the opening balance of an account in a cycle. A zero amount removes
  it.
`
}

func (c *openingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "acc", "", "Account id or name.")
	f.StringVar(&c.amount, "a", "", "Opening balance.")
	f.StringVar(&c.cycle, "c", "", "Cycle of the opening balance. Defaults to the current cycle.")
}

func (c *openingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		id, err := resolveAccount(s, c.account)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(c.amount)
		if err != nil {
			return nil, err
		}
		cmd := finance.SetOpeningBalance{AccountID: id, Amount: amount}
		if c.cycle != "" {
			if cmd.CycleID, err = finance.ParseCycleID(c.cycle); err != nil {
				return nil, err
			}
		}
		return cmd, nil
	})
}

type adjustCmd struct {
	account string
	target  string
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "align an account on its real balance" }
func (*adjustCmd) Usage() string {
	return `fdash adjust -acc <account> -a <balance>

  Shifts the base balance of an account so that its balance becomes the
  given one, without recording a transaction.
`
}

func (c *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "acc", "", "Account id or name.")
	f.StringVar(&c.target, "a", "", "The balance the account must have.")
}

func (c *adjustCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.target == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		id, err := resolveAccount(s, c.account)
		if err != nil {
			return nil, err
		}
		target, err := parseAmount(c.target)
		if err != nil {
			return nil, fmt.Errorf("invalid balance: %w", err)
		}
		return finance.AdjustAccountBalance{AccountID: id, TargetBalance: target}, nil
	})
}
