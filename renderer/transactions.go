package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// TransactionsMarkdown renders the transactions of a cycle, most recent first.
// Only the opts.Limit most recent ones are listed when a limit is set.
func TransactionsMarkdown(s *finance.State, cycle finance.CycleID, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Transactions for %s", cycleTitle(cycle)))
	rows := finance.TransactionRows(s, cycle)
	if len(rows) == 0 {
		doc.PlainText("No transactions.")
		return doc.String()
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Title", "Category", "Method", "Amount", "ID"},
	}
	for _, r := range rows {
		category := r.Category
		if r.CategoryDisabled {
			category = md.Italic(category)
		}
		table.Rows = append(table.Rows, []string{
			r.Date.String(),
			r.Title,
			category,
			r.Method,
			rowAmount(r, opts),
			r.ID,
		})
	}
	doc.Table(table)
	return doc.String()
}

// rowAmount formats the amount of a row as seen from the owner's accounts:
// expenses are negative, incomes and openings positive. Transfers are unsigned.
func rowAmount(r finance.TransactionRow, opts Options) string {
	switch r.Type {
	case finance.Expense:
		return opts.signed(r.Amount.Neg())
	case finance.Transfer:
		return opts.amount(r.Amount)
	}
	return opts.signed(r.Amount)
}
