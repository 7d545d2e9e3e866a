package finance

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// The journal is an append only JSONL audit log of the commands applied to a
// state. Each line is a command in its encoded form with the time it was
// committed:
//
//	{"at":"2026-01-27T08:00:00Z","type":"ADD_TRANSACTION","payload":{...}}

// JournalEntry is a command committed at a given time.
type JournalEntry struct {
	At      time.Time
	Command Command
}

// AppendJournal writes a single journal line for cmd.
func AppendJournal(w io.Writer, at time.Time, cmd Command) error {
	encoded, err := EncodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	var line jsonObjectWriter
	line.Append("at", at.UTC())
	line.Embed(encoded)
	data, err := line.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	return nil
}

// JournalHook returns a commit hook appending each committed command to w.
// now is the clock, nil means time.Now.
func JournalHook(w io.Writer, now func() time.Time) CommitFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, s *State, cmd Command) error {
		return AppendJournal(w, now(), cmd)
	}
}

// DecodeJournal reads journal entries in order.
func DecodeJournal(r io.Reader) ([]JournalEntry, error) {
	var entries []JournalEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxSnapshotSize)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var at struct {
			At time.Time `json:"at"`
		}
		if err := json.Unmarshal(line, &at); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		cmd, err := DecodeCommand(line)
		if err != nil {
			return nil, fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		entries = append(entries, JournalEntry{At: at.At, Command: cmd})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}
	return entries, nil
}

// Replay applies journal entries to s in order.
func (e *Engine) Replay(s *State, entries []JournalEntry) *State {
	for _, entry := range entries {
		s = e.Apply(s, entry.Command)
	}
	return s
}
