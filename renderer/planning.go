package renderer

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// PlanningMarkdown renders the planning costs of a cycle by billing day.
func PlanningMarkdown(s *finance.State, cycle finance.CycleID, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Planning for %s", cycleTitle(cycle)))
	planningTable(doc, s, cycle, opts)
	return doc.String()
}

func planningTable(doc *md.Markdown, s *finance.State, cycle finance.CycleID, opts Options) {
	var costs []finance.PlanningCost
	for _, p := range s.PlanningCosts {
		if cycle == "" || p.CycleID == cycle {
			costs = append(costs, p)
		}
	}
	if len(costs) == 0 {
		doc.PlainText("No planning costs.")
		return
	}
	slices.SortStableFunc(costs, func(a, b finance.PlanningCost) int { return cmp.Compare(a.BillingDay, b.BillingDay) })

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"Day", "Name", "Category", "Amount", "Status", "ID"},
	}
	for _, p := range costs {
		category := "Uncategorized"
		if c := s.Category(p.CategoryID); c != nil {
			category = c.Name
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(p.BillingDay),
			p.Name,
			category,
			opts.amount(p.Amount),
			string(p.Status),
			p.ID,
		})
	}
	doc.Table(table)
	if cycle != "" {
		doc.PlainText(fmt.Sprintf("Still planned: %s", md.Bold(opts.amount(finance.PlannedTotal(s, cycle)))))
	}
}
