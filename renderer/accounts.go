package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// AccountsMarkdown renders the accounts with the income and expenses of a cycle.
func AccountsMarkdown(s *finance.State, cycle finance.CycleID, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Accounts for %s", cycleTitle(cycle)))
	accountsTable(doc, s, cycle, opts)
	return doc.String()
}

func accountsTable(doc *md.Markdown, s *finance.State, cycle finance.CycleID, opts Options) {
	summaries := finance.AccountSummaries(s, cycle)
	if len(summaries) == 0 {
		doc.PlainText("No accounts.")
		return
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Account", "Balance", "Income", "Expenses"},
	}
	for _, a := range summaries {
		table.Rows = append(table.Rows, []string{
			a.Name,
			opts.amount(a.Balance),
			opts.amount(a.Income),
			opts.amount(a.Expenses),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), md.Bold(opts.amount(finance.TotalBalance(s))), "", ""})
	doc.Table(table)
}
