package finance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// this file contains functions to handle the import/export format.
// The envelope is a single JSON object, human readable, wrapping a state snapshot.

// EnvelopeVersion is the version written by ExportEnvelope.
const EnvelopeVersion = 1

// EnvelopeApp identifies envelopes written by this application.
const EnvelopeApp = "finance-dashboard"

// MaxSnapshotSize is the largest snapshot accepted for import and storage.
const MaxSnapshotSize = 10 << 20

// ErrInvalidEnvelope is returned when importing a document that is not an export envelope.
var ErrInvalidEnvelope = errors.New("invalid import payload")

// Envelope is the import/export document.
type Envelope struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	App       string          `json:"app"`
	State     json.RawMessage `json:"state"`
}

// ExportEnvelope wraps a state into an export envelope created at 'now'.
func ExportEnvelope(s *State, now time.Time) ([]byte, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cannot export state: %w", err)
	}
	return ExportRaw(state, now)
}

// ExportRaw wraps a raw state snapshot, possibly "null", into an export envelope.
func ExportRaw(state []byte, now time.Time) ([]byte, error) {
	if len(bytes.TrimSpace(state)) == 0 {
		state = []byte("null")
	}
	return json.MarshalIndent(Envelope{
		Version:   EnvelopeVersion,
		CreatedAt: now.UTC(),
		App:       EnvelopeApp,
		State:     state,
	}, "", "  ")
}

// ImportEnvelope validates an import document and returns its raw state.
//
// The document must be an object whose "version" is a number and that has a
// "state" property. The state itself is not validated, it is meant to be
// normalized by the engine.
func ImportEnvelope(data []byte) (json.RawMessage, error) {
	if len(data) > MaxSnapshotSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidEnvelope, MaxSnapshotSize)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidEnvelope)
	}
	version, err := decodeLoose(fields["version"])
	if _, isNumber := version.(json.Number); err != nil || !isNumber {
		return nil, fmt.Errorf("%w: version must be a number", ErrInvalidEnvelope)
	}
	state, ok := fields["state"]
	if !ok {
		return nil, fmt.Errorf("%w: missing state", ErrInvalidEnvelope)
	}
	return state, nil
}
