package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type logCmd struct {
	n int
}

func (*logCmd) Name() string { return "log" }
func (*logCmd) Synopsis() string {
	return "display the journal of the commands applied"
}
func (*logCmd) Usage() string {
	return `fdash log [-n <count>]

  Lists the commands recorded in the journal, oldest first. The journal is
  written only when its path is configured (journal in config.yaml or
  FINANCE_JOURNAL).
`
}

func (p *logCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.n, "n", 0, "Show only the last N commands.")
}

func (p *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if cfg.Journal == "" {
		fmt.Fprintln(os.Stderr, "Error: no journal is configured.")
		return subcommands.ExitFailure
	}
	entries, err := readJournal(cfg.Journal)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if p.n > 0 && len(entries) > p.n {
		entries = entries[len(entries)-p.n:]
	}
	printMarkdown(renderer.JournalMarkdown(entries))
	return subcommands.ExitSuccess
}

// readJournal decodes the journal file, a missing file is an empty journal.
func readJournal(path string) ([]finance.JournalEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open journal %q: %w", path, err)
	}
	defer f.Close()
	return finance.DecodeJournal(f)
}
