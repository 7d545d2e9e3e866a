package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// DashboardMarkdown renders the headline figures of a cycle followed by the
// accounts, cash flow, budget and planning sections.
func DashboardMarkdown(s *finance.State, cycle finance.CycleID, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	k := finance.ComputeKPIs(s, cycle)

	doc.H1(fmt.Sprintf("Dashboard for %s", cycleTitle(cycle)))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Balance"),
			md.Bold(opts.amount(k.TotalBalance)),
		},
		Rows: [][]string{
			{"Available after planned costs", opts.amount(k.Available)},
			{"Net cash flow", opts.signed(k.CashFlow.Net())},
			{"Planned costs", opts.amount(k.PlannedCosts)},
			{"Budget left", opts.amount(k.BudgetLeft)},
		},
	})

	doc.H2("Accounts")
	accountsTable(doc, s, cycle, opts)

	doc.H2("Cash Flow")
	flow := k.CashFlow
	doc.PlainText(fmt.Sprintf("In %s, out %s.", opts.amount(flow.Inflow), opts.amount(flow.Outflow)))
	if len(flow.Breakdown) > 0 {
		var items []string
		for _, c := range flow.Breakdown {
			items = append(items, fmt.Sprintf("%s: %s", c.Label, opts.amount(c.Value)))
		}
		doc.OrderedList(items...)
	}

	doc.H2("Budget")
	budgetTable(doc, s, cycle, opts)

	doc.H2("Planning")
	planningTable(doc, s, cycle, opts)

	if refs := s.DanglingReferences(); len(refs) > 0 {
		doc.H2("Warnings")
		var items []string
		for _, r := range refs {
			items = append(items, fmt.Sprintf("%s: %s %q does not exist", r.From, r.Field, r.To))
		}
		doc.BulletList(items...)
	}
	return doc.String()
}
