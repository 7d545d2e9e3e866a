package agent

import (
	"context"
	"fmt"

	"github.com/etnz/finance"
	"github.com/etnz/finance/docs"
	"github.com/etnz/finance/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name: "Facilitator",
		// Used by facilitators to know what they can expected from the expert
		Description: ``,
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user keeps track of personal finances: accounts, daily expenses, a monthly budget per
			category and recurring costs planned for each billing cycle. They come to know where their
			money went, what is left to spend, or to record what they spent.

			Before recording anything on the user's behalf, restate it and seek for a clear user approval.

			Devise a plan of questions to ask to each experts and come up with the best reponse to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAdvisor returns an expert grounded on Google Search for questions that
// are not about the user's own figures.
func NewAdvisor() *Expert {
	return &Expert{
		Name: "Advisor",
		Description: `This is a personal finance advisor,
		aware of banking products, prices, exchange rates and saving practices.
		Ask the Advisor whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in personal finance. You Leverage Google Search to
			ground your assertions in a solid truth: prices, exchange rates, fees,
			subscription costs. You relate them to the user's request.
				`}}},
		},
	}
}

// Book is the state the bookkeeper reads and changes, typically a
// *finance.Dispatcher.
type Book interface {
	State() *finance.State
	Dispatch(ctx context.Context, cmd finance.Command) (*finance.State, error)
}

// NewBookkeeper returns the expert in charge of the user's records.
func NewBookkeeper(engine *finance.Engine, book Book, opts renderer.Options) *Expert {
	lib := Bookkeeping(engine, book, opts)

	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper, in charge of reading and editing the user's records:
		accounts, transactions, budgets and planned costs, per billing cycle.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a bookkeeper in charge of the user's personal finance records.
				You know how to use the Tools to extract relevant figures. You are part of a team of
				experts, yours is everything about the user's records. They might ask you questions
				with an approximative language, figure out what they meant.

				Use the Dashboard, Transactions, Budget and Planning tools to read the records of a
				cycle, and Apply to record changes once the user approved them. Transactions list the
				ids you need to edit them.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Bookkeeping returns the functions of the bookkeeper.
func Bookkeeping(engine *finance.Engine, book Book, opts renderer.Options) []Function {
	return []Function{
		report(engine, book, "Dashboard", "Dashboard returns the headline figures of a cycle: balances, cash flow, budget usage and planned costs.", func(s *finance.State, c finance.CycleID) string {
			return renderer.DashboardMarkdown(s, c, opts)
		}),
		report(engine, book, "Transactions", "Transactions lists the transactions of a cycle, most recent first, with their ids.", func(s *finance.State, c finance.CycleID) string {
			return renderer.TransactionsMarkdown(s, c, opts)
		}),
		report(engine, book, "Budget", "Budget compares the budget of each category with what was spent in a cycle.", func(s *finance.State, c finance.CycleID) string {
			return renderer.BudgetMarkdown(s, c, opts)
		}),
		report(engine, book, "Planning", "Planning lists the recurring costs planned for a cycle and their status.", func(s *finance.State, c finance.CycleID) string {
			return renderer.PlanningMarkdown(s, c, opts)
		}),
		report(engine, book, "Categories", "Categories lists the categories with their id and type.", func(s *finance.State, _ finance.CycleID) string {
			return renderer.CategoriesMarkdown(s)
		}),
		apply(book),
	}
}

// report declares a function rendering a markdown report of a cycle.
func report(engine *finance.Engine, book Book, name, description string, render func(*finance.State, finance.CycleID) string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"cycle": {
						Type: genai.TypeString,
						Description: `The cycle to report on. The current cycle is the default, "all" selects every cycle.
						Otherwise it is a cycle like 2026-02 or a date in the cycle:

						` + must(docs.GetTopic("cycles")),
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			raw, _ := args["cycle"].(string)
			cycle, err := engine.SelectCycle(raw)
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, render(book.State(), cycle))
		},
	}
}

// apply declares the function recording a change.
func apply(book Book) *Func {
	const name = "Apply"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Apply records a change in the user's records. Only call it once the user approved the change.
			Invalid commands are ignored and leave the records unchanged.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"command": {
						Type: genai.TypeString,
						Description: `The command in its JSON form {"type": ..., "payload": {...}}:

						` + must(docs.GetTopic("commands")),
					},
				},
				Required: []string{"command"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "What changed.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			raw, ok := args["command"].(string)
			if !ok {
				return failure(id, name, fmt.Errorf("argument 'command' is not a string as expected but %T", args["command"]))
			}
			cmd, err := finance.DecodeCommand([]byte(raw))
			if err != nil {
				return failure(id, name, err)
			}
			prev := book.State()
			next, err := book.Dispatch(ctx, cmd)
			if err != nil {
				return failure(id, name, err)
			}
			if next == prev {
				return success(id, name, fmt.Sprintf("Nothing changed, %s was ignored: check the ids and amounts.", cmd.What()))
			}
			return success(id, name, renderer.Command(cmd)+".")
		},
	}
}
