package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type categoryCmd struct {
	typ string
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "list and manage categories" }
func (*categoryCmd) Usage() string {
	return `fdash category
fdash category add [-type income|expense] <name>
fdash category rename <category> <name>
fdash category type <category> income|expense
fdash category enable|disable|delete <category>

  Without action, lists the categories. Categories are given by id or name.
  Disabled categories stay on existing transactions but are hidden from new
  entries. Only categories nothing refers to can be deleted.
`
}

func (c *categoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "type", string(finance.ExpenseCategory), "Type of the new category: income or expense.")
}

func (c *categoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return run(ctx, func(b *book) error {
			printMarkdown(renderer.CategoriesMarkdown(b.State()))
			return nil
		})
	}
	action, args := f.Arg(0), f.Args()[1:]
	if action == "add" {
		if len(args) == 0 {
			f.Usage()
			return subcommands.ExitUsageError
		}
		return apply(ctx, finance.AddCategory{Name: strings.Join(args, " "), Type: finance.CategoryType(c.typ)})
	}
	if len(args) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return applyWith(ctx, func(s *finance.State) (finance.Command, error) {
		return categoryCommand(s, action, args[0], args[1:])
	})
}

// categoryCommand builds the command of an action on an existing category.
func categoryCommand(s *finance.State, action, ref string, args []string) (finance.Command, error) {
	id, err := resolveCategory(s, ref)
	if err != nil {
		return nil, err
	}
	switch action {
	case "rename":
		if len(args) == 0 {
			return nil, fmt.Errorf("rename needs a new name")
		}
		return finance.RenameCategory{ID: id, Name: strings.Join(args, " ")}, nil
	case "type":
		if len(args) != 1 {
			return nil, fmt.Errorf("type needs one of %q or %q", finance.IncomeCategory, finance.ExpenseCategory)
		}
		t := finance.CategoryType(args[0])
		return finance.UpdateCategory{ID: id, Type: &t}, nil
	case "enable":
		return finance.EnableCategory{ID: id}, nil
	case "disable":
		return finance.DisableCategory{ID: id}, nil
	case "delete":
		if id == finance.UncategorizedID {
			fmt.Fprintln(os.Stderr, "Warning: the reserved category cannot be deleted.")
		}
		return finance.DeleteCategory{ID: id}, nil
	}
	return nil, fmt.Errorf("unknown action %q", action)
}
