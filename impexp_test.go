package finance

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExportImportEnvelope(t *testing.T) {
	e := newTestEngine("2026-01-15")
	s := e.Apply(e.Normalize(nil), AddTransaction{Type: Expense, Amount: P("12.5"), FromAccount: "acc-1", CategoryID: "cat-home"})

	now := time.Date(2026, 1, 15, 9, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	data, err := ExportEnvelope(s, now)
	if err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("export is not an envelope: %v", err)
	}
	if env.Version != EnvelopeVersion || env.App != EnvelopeApp || !env.CreatedAt.Equal(now) || env.CreatedAt.Location() != time.UTC {
		t.Errorf("envelope header = %+v", env)
	}

	raw, err := ImportEnvelope(data)
	if err != nil {
		t.Fatalf("ImportEnvelope() unexpected error: %v", err)
	}
	if diff := diffState(s, e.NormalizeJSON(raw)); diff != "" {
		t.Errorf("export then import changed the state (-want +got):\n%s", diff)
	}
}

func TestExportRaw_Empty(t *testing.T) {
	data, err := ExportRaw(nil, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := ImportEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "null" {
		t.Errorf("state = %s, want null", raw)
	}
}

func TestImportEnvelope_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":       `{"version": 1,`,
		"array":          `[1, 2]`,
		"null":           `null`,
		"no version":     `{"state": {}}`,
		"quoted version": `{"version": "1", "state": {}}`,
		"no state":       `{"version": 1}`,
		"too large":      `{"version": 1, "state": "` + strings.Repeat("x", MaxSnapshotSize) + `"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ImportEnvelope([]byte(input)); !errors.Is(err, ErrInvalidEnvelope) {
				t.Errorf("ImportEnvelope() error = %v, want ErrInvalidEnvelope", err)
			}
		})
	}
}

func TestImportEnvelope_OlderVersions(t *testing.T) {
	// the state is returned as is, whatever its shape.
	raw, err := ImportEnvelope([]byte(`{"version": 0.9, "app": "other", "state": {"accounts": [{"id": "a", "balance": "5"}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte(`"balance": "5"`)) {
		t.Errorf("state = %s", raw)
	}
}
