package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/finance"
)

func TestDecodeLines(t *testing.T) {
	lines := []string{
		`{"type":"ADD_ACCOUNT","payload":{"name":"Savings"}}`,
		`{"type":"DROP_DATABASE","payload":{}}`,
		`{"type":"UPDATE_BUDGET","payload":{"categoryId":"cat-home","amount":"abc"}}`,
		`{"type":"RECALCULATE_BALANCES"}`,
	}

	t.Run("strict", func(t *testing.T) {
		var warn strings.Builder
		cmds, err := decodeLines(lines, false, &warn)
		if !errors.Is(err, finance.ErrUnknownCommand) || !strings.Contains(err.Error(), "command 2") {
			t.Errorf("decodeLines() error = %v, want the unknown command on line 2", err)
		}
		if cmds != nil || warn.Len() != 0 {
			t.Errorf("decodeLines() = %v, %q; want nothing", cmds, warn.String())
		}
	})

	t.Run("skip", func(t *testing.T) {
		var warn strings.Builder
		cmds, err := decodeLines(lines, true, &warn)
		if err != nil {
			t.Fatalf("decodeLines() unexpected error: %v", err)
		}
		if len(cmds) != 2 || cmds[0].What() != finance.CmdAddAccount || cmds[1].What() != finance.CmdRecalculateBalances {
			t.Errorf("decodeLines() = %v, want ADD_ACCOUNT and RECALCULATE_BALANCES", cmds)
		}
		for _, want := range []string{"Skipping command 2", "Skipping command 3"} {
			if !strings.Contains(warn.String(), want) {
				t.Errorf("warnings %q lack %q", warn.String(), want)
			}
		}
	})
}
