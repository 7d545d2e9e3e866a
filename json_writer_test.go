package finance

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/etnz/finance/date"
)

func TestTransaction_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want string
	}{
		{
			name: "opening skips the source account and category",
			tx:   Transaction{ID: "t1", Type: Opening, Amount: D("300.50"), ToAccount: "bank", CycleID: "2026-02", Note: "Opening Balance", Date: date.New(2026, 2, 1)},
			want: `{"id":"t1","type":"opening","amount":300.5,"toAccount":"bank","cycleId":"2026-02","note":"Opening Balance","date":"2026-02-01"}`,
		},
		{
			name: "planning payment keeps the cost link",
			tx:   Transaction{ID: "t2", Type: Expense, Amount: D("12"), FromAccount: "bank", CategoryID: "cat-subscription", CycleID: "2026-01", Date: date.New(2026, 1, 30), PlanningCostID: "pc-1"},
			want: `{"id":"t2","type":"expense","amount":12,"fromAccount":"bank","categoryId":"cat-subscription","cycleId":"2026-01","note":"","date":"2026-01-30","planningCostId":"pc-1"}`,
		},
		{
			name: "transfer has both accounts and no category",
			tx:   Transaction{ID: "t3", Type: Transfer, Amount: D("0"), FromAccount: "bank", ToAccount: "cash", CycleID: "2026-01", Note: "atm", Date: date.New(2026, 1, 28)},
			want: `{"id":"t3","type":"transfer","amount":0,"fromAccount":"bank","toAccount":"cash","cycleId":"2026-01","note":"atm","date":"2026-01-28"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.tx)
			if err != nil {
				t.Fatalf("json.Marshal() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("json.Marshal() got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{DeleteCategory{ID: "cat-food"}, `{"type":"DELETE_CATEGORY","payload":{"id":"cat-food"}}`},
		{AddAccount{Name: "Cash"}, `{"type":"ADD_ACCOUNT","payload":{"name":"Cash"}}`},
		{UpdateBudget{CycleID: "2026-01", CategoryID: "cat-food", Amount: P("250")}, `{"type":"UPDATE_BUDGET","payload":{"cycleId":"2026-01","categoryId":"cat-food","amount":250}}`},
		{RecalculateBalancesCmd{}, `{"type":"RECALCULATE_BALANCES","payload":{}}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.cmd.What()), func(t *testing.T) {
			got, err := EncodeCommand(tt.cmd)
			if err != nil {
				t.Fatalf("EncodeCommand() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("EncodeCommand() got %s, want %s", got, tt.want)
			}
			back, err := DecodeCommand(got)
			if err != nil {
				t.Fatalf("DecodeCommand(%s) unexpected error: %v", got, err)
			}
			if back.What() != tt.cmd.What() {
				t.Errorf("DecodeCommand() type got %s, want %s", back.What(), tt.cmd.What())
			}
		})
	}
}

func TestAppendJournal_Line(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 1, 27, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	if err := AppendJournal(&buf, at, RenameAccount{ID: "bank", Name: "Main"}); err != nil {
		t.Fatalf("AppendJournal() unexpected error: %v", err)
	}
	// The command fields are flattened next to the timestamp, in UTC.
	want := `{"at":"2026-01-27T08:30:00Z","type":"RENAME_ACCOUNT","payload":{"id":"bank","name":"Main"}}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("AppendJournal() got %q, want %q", got, want)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("AppendJournal() wrote %d lines, want 1", strings.Count(buf.String(), "\n"))
	}
}

func TestJsonObjectWriter_Optional(t *testing.T) {
	var w jsonObjectWriter
	w.Append("id", "")
	w.Optional("from", "")
	w.Optional("day", 0)
	w.Optional("to", "cash")
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() unexpected error: %v", err)
	}
	if want := `{"id":"","to":"cash"}`; string(got) != want {
		t.Errorf("MarshalJSON() got %s, want %s", got, want)
	}
}
