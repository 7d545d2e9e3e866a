// Package cmd implements the CLI application to manage personal finances.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finance"
	"github.com/etnz/finance/config"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&summaryCmd{}, "reports")
	c.Register(&accountsCmd{}, "reports")
	c.Register(&budgetCmd{}, "reports")
	c.Register(&planningCmd{}, "reports")
	c.Register(&txCmd{}, "reports")
	c.Register(&cyclesCmd{}, "reports")
	c.Register(&queryCmd{}, "reports")
	c.Register(&logCmd{}, "reports")

	c.Register(&expenseCmd{}, "transactions")
	c.Register(&incomeCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&editTxCmd{}, "transactions")
	c.Register(&deleteTxCmd{}, "transactions")

	c.Register(&addAccountCmd{}, "accounts")
	c.Register(&renameAccountCmd{}, "accounts")
	c.Register(&openingCmd{}, "accounts")
	c.Register(&adjustCmd{}, "accounts")

	c.Register(&categoryCmd{}, "budget")
	c.Register(&setBudgetCmd{}, "budget")
	c.Register(&planCmd{}, "budget")
	c.Register(&planStatusCmd{}, "budget")
	c.Register(&payCmd{}, "budget")

	c.Register(&dispatchCmd{}, "state")
	c.Register(&fmtCmd{}, "state")
	c.Register(&exportCmd{}, "state")
	c.Register(&importCmd{}, "state")
	c.Register(&serveCmd{}, "state")

	c.Register(&AssistCmd{}, "help")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file. Defaults to config.yaml in the working directory.")
var Verbose = flag.Bool("v", false, "Log details about the store and the commands applied.")
var rawOutput = flag.Bool("raw", false, "Print reports as plain markdown instead of rendering them for the terminal.")

// loadConfig loads the configuration selected by the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if !*Verbose {
		log.SetOutput(io.Discard)
	}
	return cfg, nil
}

// book is the state held in the configured store. Changes made through its
// dispatcher are saved, and journaled when a journal is configured.
type book struct {
	cfg        *config.Config
	engine     *finance.Engine
	store      store.Store
	dispatcher *finance.Dispatcher
	journal    *os.File
}

// openBook opens the configured store and normalizes the state it holds.
// hooks are called after each commit, after saving and journaling.
func openBook(ctx context.Context, hooks ...finance.CommitFunc) (*book, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	raw, err := store.LoadState(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	if raw == nil {
		log.Println("warning, the store holds no state, starting from the seed")
	}

	b := &book{cfg: cfg, engine: finance.NewEngine(), store: st}
	hooks = append([]finance.CommitFunc{store.Hook(st)}, hooks...)
	if cfg.Journal != "" {
		// Open the file in append mode, creating it if it doesn't exist.
		b.journal, err = os.OpenFile(cfg.Journal, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("could not open journal %q: %w", cfg.Journal, err)
		}
		hooks = slices.Insert(hooks, 1, finance.JournalHook(b.journal, nil))
	}
	b.dispatcher = finance.NewDispatcher(b.engine, b.engine.NormalizeJSON(raw), hooks...)
	return b, nil
}

// Close stops the dispatcher and closes the store and the journal.
func (b *book) Close() error {
	b.dispatcher.Close()
	errs := []error{b.store.Close()}
	if b.journal != nil {
		errs = append(errs, b.journal.Close())
	}
	return errors.Join(errs...)
}

func (b *book) State() *finance.State { return b.dispatcher.State() }

func (b *book) render() renderer.Options { return renderer.Options{Currency: b.cfg.Currency} }

// run opens the book, calls f and closes the book. It is the body of most
// subcommands.
func run(ctx context.Context, f func(b *book) error) subcommands.ExitStatus {
	b, err := openBook(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	err = f(b)
	if cerr := b.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error closing the store:", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// apply dispatches cmd and reports what happened.
func apply(ctx context.Context, cmd finance.Command) subcommands.ExitStatus {
	return applyWith(ctx, func(*finance.State) (finance.Command, error) { return cmd, nil })
}

// applyWith is like apply for commands that refer to the current state, e.g.
// to resolve account names.
func applyWith(ctx context.Context, build func(s *finance.State) (finance.Command, error)) subcommands.ExitStatus {
	return runWith(ctx, func(_ *book, s *finance.State) (finance.Command, error) { return build(s) })
}

// runWith is like applyWith when building the command needs the book too.
func runWith(ctx context.Context, build func(b *book, s *finance.State) (finance.Command, error)) subcommands.ExitStatus {
	return run(ctx, func(b *book) error {
		prev := b.State()
		cmd, err := build(b, prev)
		if err != nil {
			return err
		}
		log.Printf("dispatching %s", cmd.What())
		next, err := b.dispatcher.Dispatch(ctx, cmd)
		if err != nil {
			return err
		}
		if next == prev {
			fmt.Fprintf(os.Stderr, "Nothing changed: %s was ignored.\n", cmd.What())
			return nil
		}
		fmt.Printf("%s.\n", renderer.Command(cmd))
		return nil
	})
}

// printMarkdown renders md for the terminal, unless raw output was requested.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
