package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// Command renders a command to a string.
func Command(cmd finance.Command) string {
	amount := func(d *decimal.Decimal) string {
		if d == nil {
			return "?"
		}
		return d.String()
	}
	switch v := cmd.(type) {
	case finance.AddTransaction:
		switch v.Type {
		case finance.Income:
			return fmt.Sprintf("Received %s on %s", amount(v.Amount), v.ToAccount)
		case finance.Transfer:
			return fmt.Sprintf("Transferred %s from %s to %s", amount(v.Amount), v.FromAccount, v.ToAccount)
		}
		return fmt.Sprintf("Spent %s from %s", amount(v.Amount), v.FromAccount)
	case finance.UpdateTransaction:
		return fmt.Sprintf("Updated transaction %s", v.ID)
	case finance.DeleteTransaction:
		return fmt.Sprintf("Deleted transaction %s", v.ID)
	case finance.AddAccount:
		return fmt.Sprintf("Opened account %q with %s", v.Name, amount(v.Balance))
	case finance.RenameAccount:
		return fmt.Sprintf("Renamed account %s to %q", v.ID, v.Name)
	case finance.SetOpeningBalance:
		return fmt.Sprintf("Set opening balance of %s to %s", v.AccountID, amount(v.Amount))
	case finance.AdjustAccountBalance:
		return fmt.Sprintf("Adjusted %s to %s", v.AccountID, amount(v.TargetBalance))
	case finance.AddCategory:
		return fmt.Sprintf("Created category %q", v.Name)
	case finance.UpdateBudget:
		return fmt.Sprintf("Budgeted %s for %s", amount(v.Amount), v.CategoryID)
	case finance.AddPlanningCost:
		return fmt.Sprintf("Planned %q for %s", v.Name, amount(v.Amount))
	case finance.PayPlanningCost:
		return fmt.Sprintf("Paid %s from %s", v.PlanningCostID, v.AccountID)
	default:
		return string(cmd.What())
	}
}

// JournalMarkdown renders journal entries as a list, oldest first.
func JournalMarkdown(entries []finance.JournalEntry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Journal")
	if len(entries) == 0 {
		doc.PlainText("No commands.")
		return doc.String()
	}
	var items []string
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s %s", e.At.Format("2006-01-02 15:04"), Command(e.Command)))
	}
	doc.OrderedList(items...)
	return doc.String()
}
