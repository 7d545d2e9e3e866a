// Package agent implements a chat assistant over the user's finances. A
// facilitator leads the conversation and consults experts, which call
// functions to read and change the records.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Format formats the markdown answers for w. Nil prints them as is.
	Format func(markdown string) string
}

// New creates a new Agent talking to the user through w and r, e.g. os.Stdout
// and os.Stdin.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start opens the chats of the experts and the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append(slices.Clone(a.Experts), a.Facilitator) {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return nil
}

// Ask asks a question to the facilitator and returns its formatted answer.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	answer := text(content)
	if a.Format != nil {
		answer = a.Format(answer)
	}
	return answer, nil
}

const prompt = "assist> "

// farewells end the session.
var farewells = []string{"bye", "exit", "quit"}

// Run starts the interactive REPL session for the agent. prompts are asked
// first, as if the user typed them.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to fdash assist, ask about your accounts, budget or spending. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err == io.EOF {
				return nil // Clean exit on Ctrl+D
			}
			if err != nil {
				return err
			}
			input = strings.TrimSpace(input)
		}
		if slices.Contains(farewells, strings.ToLower(input)) {
			return nil
		}
		if input == "" {
			continue
		}

		answer, err := a.Ask(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}
