// Command migrate moves legacy finance snapshots into a store and checks
// that they survive normalization.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/config"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

func main() {
	// The migrate tool needs its own set of flags, independent of the main fdash tool.
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(&snapshotCmd{}, "")
	commander.Register(&replayCmd{}, "")
	commander.Register(&checkCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// readSnapshot reads a snapshot file, either a bare state or an export envelope.
func readSnapshot(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if state, err := finance.ImportEnvelope(data); err == nil {
		log.Printf("%s is an export envelope", path)
		return state, nil
	}
	return data, nil
}

// save normalizes raw and saves it in the store of the configuration file.
// The previous state is backed up.
func save(ctx context.Context, configFile string, s *finance.State) error {
	if err := finance.CheckBalances(s); err != nil {
		return fmt.Errorf("refusing to save an inconsistent state: %w", err)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	return errors.Join(store.Backup(ctx, st), store.SaveState(ctx, st, s), st.Close())
}

// --- snapshotCmd ---

type snapshotCmd struct {
	in     string
	config string
	dryRun bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "migrates a legacy snapshot file into the store" }
func (*snapshotCmd) Usage() string {
	return `migrate snapshot -in <snapshot file> [-config <config file>] [-n]

Normalizes a snapshot saved by an older version, or an export envelope, and
saves it in the configured store. The state it replaces is kept as a backup.
`
}
func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "The path to the snapshot file.")
	f.StringVar(&c.config, "config", "", "The configuration file selecting the store.")
	f.BoolVar(&c.dryRun, "n", false, "Print the migrated state instead of saving it.")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in flag is required.")
		return subcommands.ExitUsageError
	}
	raw, err := readSnapshot(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	s := finance.NewEngine().NormalizeJSON(raw)
	if c.dryRun {
		if err := finance.EncodeState(os.Stdout, s); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if err := save(ctx, c.config, s); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Migrated %d accounts and %d transactions.\n", len(s.Accounts), len(s.Transactions))
	return subcommands.ExitSuccess
}

// --- replayCmd ---

type replayCmd struct {
	journal string
	seed    string
	config  string
	dryRun  bool
}

func (*replayCmd) Name() string     { return "replay" }
func (*replayCmd) Synopsis() string { return "rebuilds the state from a command journal" }
func (*replayCmd) Usage() string {
	return `migrate replay -journal <journal file> [-seed <seed file>] [-config <config file>] [-n]

Applies the commands of a journal to the seed state, in order, and saves the
result in the configured store. Commands are applied on the day they were
recorded.
`
}
func (c *replayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.journal, "journal", "", "The path to the journal file.")
	f.StringVar(&c.seed, "seed", "", "The seed data to start from. Defaults to the bundled seed.")
	f.StringVar(&c.config, "config", "", "The configuration file selecting the store.")
	f.BoolVar(&c.dryRun, "n", false, "Print the rebuilt state instead of saving it.")
}

func (c *replayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.journal == "" {
		fmt.Fprintln(os.Stderr, "Error: -journal flag is required.")
		return subcommands.ExitUsageError
	}
	s, err := c.rebuild()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if c.dryRun {
		err = finance.EncodeState(os.Stdout, s)
	} else {
		err = save(ctx, c.config, s)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *replayCmd) rebuild() (*finance.State, error) {
	file, err := os.Open(c.journal)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	entries, err := finance.DecodeJournal(file)
	if err != nil {
		return nil, err
	}

	var day date.Date
	e := &finance.Engine{Today: func() date.Date { return day }}
	if c.seed != "" {
		seedFile, err := os.Open(c.seed)
		if err != nil {
			return nil, err
		}
		defer seedFile.Close()
		seed, err := finance.DecodeSeed(seedFile)
		if err != nil {
			return nil, err
		}
		e.Seed = &seed
	}

	day = date.Today()
	if len(entries) > 0 {
		day = dayOf(entries[0].At)
	}
	s := e.SeedState()
	for _, entry := range entries {
		day = dayOf(entry.At)
		s = e.Replay(s, []finance.JournalEntry{entry})
	}
	log.Printf("replayed %d commands", len(entries))
	return s, nil
}

func dayOf(t time.Time) date.Date { return date.New(t.Year(), t.Month(), t.Day()) }

// --- checkCmd ---

type checkCmd struct {
	in string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verifies that a snapshot migrates cleanly" }
func (*checkCmd) Usage() string {
	return `migrate check -in <snapshot file>

Normalizes a snapshot twice and reports what the migration changes, the
balances that do not add up and any difference between the two passes.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "The path to the snapshot file.")
}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in flag is required.")
		return subcommands.ExitUsageError
	}
	raw, err := readSnapshot(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	// Both passes must agree on the day.
	today := date.Today()
	e := &finance.Engine{Today: func() date.Date { return today }}
	once := e.NormalizeJSON(raw)
	twice := e.Normalize(once)

	fmt.Println(" Records        | Migrated")
	fmt.Println("--------------------------")
	fmt.Printf(" Accounts       | %8d\n", len(once.Accounts))
	fmt.Printf(" Transactions   | %8d\n", len(once.Transactions))
	fmt.Printf(" Categories     | %8d\n", len(once.Categories))
	fmt.Printf(" Budgets        | %8d\n", len(once.Budgets))
	fmt.Printf(" Planning costs | %8d\n", len(once.PlanningCosts))

	status := subcommands.ExitSuccess
	if err := finance.CheckBalances(once); err != nil {
		fmt.Println("Balances do not add up:", err)
		status = subcommands.ExitFailure
	}
	for _, r := range once.DanglingReferences() {
		fmt.Printf("Warning: %s.%s refers to missing %q\n", r.From, r.Field, r.To)
	}
	decimals := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	dates := cmp.Comparer(func(a, b date.Date) bool { return a == b })
	if diff := cmp.Diff(once, twice, decimals, dates); diff != "" {
		fmt.Printf("A second normalization changes the state (-once +twice):\n%s", diff)
		status = subcommands.ExitFailure
	}
	if status == subcommands.ExitSuccess {
		fmt.Println("OK")
	}
	return status
}
