package finance

import (
	"fmt"

	"github.com/etnz/finance/date"
	"github.com/google/uuid"
)

// Engine applies commands to states and normalizes persisted snapshots.
//
// Its results only depend on the inputs, the clock and the id generator, so
// tests fix both. The zero value uses the bundled seed, today's date and
// random uuids.
type Engine struct {
	Seed  *SeedData        // Seed used when a snapshot is missing. Nil means DefaultSeed.
	Today func() date.Date // Today is the clock. Nil means date.Today.
	NewID func() string    // NewID generates record ids. Nil means uuid.NewString.
}

// NewEngine returns an engine using the bundled seed, the system clock and uuids.
func NewEngine() *Engine { return &Engine{} }

func (e *Engine) today() date.Date {
	if e.Today == nil {
		return date.Today()
	}
	return e.Today()
}

func (e *Engine) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e *Engine) seed() SeedData {
	if e.Seed == nil {
		return DefaultSeed()
	}
	return *e.Seed
}

// CurrentCycle returns the cycle containing today.
func (e *Engine) CurrentCycle() CycleID { return CurrentCycleID(e.today()) }

// AllCycles selects every cycle in SelectCycle.
const AllCycles = "all"

// SelectCycle parses a user supplied cycle selector: empty for the current
// cycle, AllCycles for every cycle (an empty CycleID), a cycle label, or a
// date in the cycle.
func (e *Engine) SelectCycle(raw string) (CycleID, error) {
	switch raw {
	case "":
		return e.CurrentCycle(), nil
	case AllCycles:
		return "", nil
	}
	if cycle, err := ParseCycleID(raw); err == nil {
		return cycle, nil
	}
	if d, err := date.Parse(raw); err == nil {
		return DeriveCycleID(d), nil
	}
	return "", fmt.Errorf("invalid cycle %q, want a cycle like 2026-02, a date or %q", raw, AllCycles)
}

// SeedState returns the state built from the engine's seed data.
func (e *Engine) SeedState() *State { return BuildSeedState(e.seed(), e.today()) }
