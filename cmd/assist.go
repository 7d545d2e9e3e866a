package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/finance/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `fdash assist [<question>]

  Starts an interactive session with the AI assistant. It reads the records
  and, once approved, records changes. The Gemini client is configured by
  the GOOGLE_API_KEY environment variable.
`
}

// SetFlags sets the flags for the command.
func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	return run(ctx, func(b *book) error {
		a := agent.New(os.Stdout, os.Stdin, agent.NewAdvisor(), agent.NewBookkeeper(b.engine, b.dispatcher, b.render()))
		if !*rawOutput {
			if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120)); err == nil {
				a.Format = func(markdown string) string {
					out, err := r.Render(markdown)
					if err != nil {
						return markdown
					}
					return out
				}
			}
		}
		if err := a.Run(ctx, client, initialPrompt); err != nil {
			return fmt.Errorf("agent failed: %w", err)
		}
		return nil
	})
}
