// Package memory owns the harness's learning state: the trace history,
// cross-run mistake pattern counts, and the constraints promoted from them.
package memory

import (
	"time"

	"github.com/aletheia-ai/retrace/pkg/trace"
)

// snapshotVersion is the durable document schema version. Documents written
// before versioning carry 0 and are read as version 1.
const snapshotVersion = 1

// Constraint is a frozen natural-language instruction derived from a mistake
// pattern that crossed the repetition threshold. At most one exists per
// pattern key; it is never updated after creation.
type Constraint struct {
	PatternKey  string    `json:"pattern_key"`
	Text        string    `json:"constraint"`
	Occurrences int       `json:"occurrences"` // pattern count at first threshold crossing
	CreatedAt   time.Time `json:"created_at"`
}

// Snapshot is the complete durable state of one memory store.
type Snapshot struct {
	Version     int                     `json:"version"`
	RunCounter  int                     `json:"run_counter"`
	Constraints []Constraint            `json:"learned_constraints"`
	Patterns    map[string]int          `json:"mistake_patterns"`
	History     []*trace.ExecutionTrace `json:"execution_history"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:     snapshotVersion,
		Constraints: make([]Constraint, 0),
		Patterns:    make(map[string]int),
		History:     make([]*trace.ExecutionTrace, 0),
	}
}

// Store persists snapshots durably. Load on a fresh location returns an
// empty snapshot, not an error.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
	Close() error
}
