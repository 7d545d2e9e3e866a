package finance

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{
			input: `{"type":"ADD_TRANSACTION","payload":{"type":"expense","amount":12.5,"fromAccount":"bank","categoryId":"cat-food"}}`,
			want:  AddTransaction{Type: Expense, Amount: P("12.5"), FromAccount: "bank", CategoryID: "cat-food"},
		},
		{
			input: `{"type":"UPDATE_TRANSACTION","payload":{"id":"t1","note":""}}`,
			want:  UpdateTransaction{ID: "t1", Note: new(string)},
		},
		{
			input: `{"type":"SET_OPENING_BALANCE","payload":{"accountId":"bank","cycleId":"2026-02","amount":"300"}}`,
			want:  SetOpeningBalance{AccountID: "bank", CycleID: "2026-02", Amount: P("300")},
		},
		{
			input: `{"type":"RECALCULATE_BALANCES"}`,
			want:  RecalculateBalancesCmd{},
		},
		{
			input: `{"type":"RECALCULATE_BALANCES","payload":null}`,
			want:  RecalculateBalancesCmd{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeCommand() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, decimalComparer); diff != "" {
				t.Errorf("DecodeCommand() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	if _, err := DecodeCommand([]byte(`{"type":"DROP_DATABASE","payload":{}}`)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown type: got %v, want ErrUnknownCommand", err)
	}
	for _, input := range []string{`not json`, `{"type":"ADD_ACCOUNT","payload":"bank"}`, `{"type":"ADD_ACCOUNT","payload":{"balance":"abc"}}`} {
		if _, err := DecodeCommand([]byte(input)); err == nil {
			t.Errorf("DecodeCommand(%s) expected an error", input)
		}
	}
}

func TestEncodeCommand_AddAccount(t *testing.T) {
	got, err := EncodeCommand(AddAccount{Name: "Savings", Balance: P("10.50")})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"ADD_ACCOUNT","payload":{"name":"Savings","balance":10.5}}`
	if string(got) != want {
		t.Errorf("EncodeCommand() = %s, want %s", got, want)
	}
}

func TestCommandTypes(t *testing.T) {
	seen := map[CommandType]bool{}
	for _, typ := range CommandTypes() {
		if seen[typ] {
			t.Errorf("%s listed twice", typ)
		}
		seen[typ] = true
		cmd := newCommand(typ)
		if cmd == nil {
			t.Errorf("newCommand(%s) = nil", typ)
			continue
		}
		if cmd.What() != typ {
			t.Errorf("newCommand(%s).What() = %s", typ, cmd.What())
		}
		// every command survives encoding.
		data, err := EncodeCommand(deref(cmd))
		if err != nil {
			t.Errorf("EncodeCommand(%s): %v", typ, err)
			continue
		}
		back, err := DecodeCommand(data)
		if err != nil {
			t.Errorf("DecodeCommand(%s): %v", data, err)
			continue
		}
		if back.What() != typ {
			t.Errorf("decoded %s as %s", typ, back.What())
		}
	}
	if len(seen) != 21 {
		t.Errorf("got %d command types, want 21", len(seen))
	}
}
