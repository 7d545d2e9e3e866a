package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// BudgetMarkdown renders the budget usage of a cycle.
func BudgetMarkdown(s *finance.State, cycle finance.CycleID, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Budget for %s", cycleTitle(cycle)))
	budgetTable(doc, s, cycle, opts)
	return doc.String()
}

func budgetTable(doc *md.Markdown, s *finance.State, cycle finance.CycleID, opts Options) {
	lines := finance.BudgetUsage(s, cycle)
	if len(lines) == 0 {
		doc.PlainText("No budget nor spending.")
		return
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Category", "Budget", "Spent", "Left"},
	}
	for _, l := range lines {
		left := opts.amount(l.Left())
		if l.Left().IsNegative() {
			left = md.Bold(left)
		}
		table.Rows = append(table.Rows, []string{l.Name, opts.amount(l.Budget), opts.amount(l.Spent), left})
	}
	doc.Table(table)
}

// CategoriesMarkdown renders the categories with their id, disabled ones in
// italics.
func CategoriesMarkdown(s *finance.State) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Categories")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Name", "Type", "ID"},
	}
	for _, c := range s.Categories {
		name := c.Name
		if c.Disabled {
			name = md.Italic(name + " (disabled)")
		}
		table.Rows = append(table.Rows, []string{name, string(c.Type), c.ID})
	}
	doc.Table(table)
	return doc.String()
}
