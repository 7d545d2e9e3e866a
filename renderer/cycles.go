package renderer

import (
	"bytes"

	"github.com/etnz/finance"
	md "github.com/nao1215/markdown"
)

// CyclesMarkdown renders the cycles around center with their dates. The
// current cycle is in bold.
func CyclesMarkdown(current, center finance.CycleID, n int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Cycles")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Cycle", "From", "To"},
	}
	for c := range finance.CycleOptions(center, n) {
		r := c.Range()
		label := string(c)
		if c == current {
			label = md.Bold(label)
		}
		table.Rows = append(table.Rows, []string{label, r.From.String(), r.To.String()})
	}
	doc.Table(table)
	return doc.String()
}
