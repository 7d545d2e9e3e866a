package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

type dispatchCmd struct {
	skip bool
}

func (*dispatchCmd) Name() string     { return "dispatch" }
func (*dispatchCmd) Synopsis() string { return "apply commands given in their JSON form" }
func (*dispatchCmd) Usage() string {
	return `fdash dispatch '<command>'
fdash dispatch < commands.jsonl

  Applies a command given as {"type": ..., "payload": {...}}, or every line of
  the standard input when no command is given. See fdash topic commands.

  A line that cannot be decoded, because of an unknown type or a malformed
  payload, aborts the whole batch before anything is applied, unless -skip
  is set.

Usage Examples:
$ fdash dispatch '{"type":"ADD_ACCOUNT","payload":{"name":"Savings","balance":500}}'
`
}

func (c *dispatchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.skip, "skip", false, "Skip the lines that cannot be decoded instead of aborting.")
}

func (c *dispatchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var lines []string
	if f.NArg() > 0 {
		lines = []string{strings.Join(f.Args(), " ")}
	} else {
		var err error
		if lines, err = readLines(os.Stdin); err != nil {
			fmt.Fprintln(os.Stderr, "Error reading commands:", err)
			return subcommands.ExitFailure
		}
	}
	cmds, err := decodeLines(lines, c.skip, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(b *book) error {
		applied := 0
		for _, cmd := range cmds {
			prev := b.State()
			next, err := b.dispatcher.Dispatch(ctx, cmd)
			if err != nil {
				return err
			}
			if next != prev {
				applied++
			}
		}
		fmt.Printf("Applied %d of %d commands.\n", applied, len(cmds))
		return nil
	})
}

// decodeLines decodes one command per line. When skip is set, lines that
// cannot be decoded are reported on warn and left out.
func decodeLines(lines []string, skip bool, warn io.Writer) ([]finance.Command, error) {
	cmds := make([]finance.Command, 0, len(lines))
	for i, line := range lines {
		cmd, err := finance.DecodeCommand([]byte(line))
		switch {
		case err != nil && skip:
			fmt.Fprintf(warn, "Skipping command %d: %v\n", i+1, err)
		case err != nil:
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		default:
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

// readLines returns the non blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), finance.MaxSnapshotSize)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the state to a file" }
func (*exportCmd) Usage() string {
	return `fdash export [-o <file>]

  Writes the state in an export envelope, {"version": 1, "createdAt": ...,
  "state": {...}}, that fdash import reads back.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "File to write. Defaults to the standard output.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(b *book) error {
		data, err := finance.ExportEnvelope(b.State(), time.Now())
		if err != nil {
			return err
		}
		if c.output == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(c.output, data, 0644); err != nil {
			return fmt.Errorf("could not write export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", c.output)
		return nil
	})
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the state by an exported one" }
func (*importCmd) Usage() string {
	return `fdash import <file>

  Replaces the stored state by the state of an export envelope. The current
  state is kept as a backup in the store. The imported state is normalized
  when it is next read.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return run(ctx, func(b *book) error {
		_, err := b.dispatcher.ResetWith(ctx, func(ctx context.Context) (*finance.State, error) {
			raw, err := store.Import(ctx, b.store, data)
			if err != nil {
				return nil, err
			}
			return b.engine.NormalizeJSON(raw), nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Imported %s, the previous state is backed up under %q.\n", f.Arg(0), store.BackupKey)
		return nil
	})
}
