package memory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aletheia-ai/retrace/pkg/errors"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

const (
	// ConstraintThreshold is how many times a pattern must repeat before a
	// constraint is learned from it.
	ConstraintThreshold = 2

	// HistoryLimit bounds how many traces the persisted snapshot keeps. The
	// in-memory history is not truncated.
	HistoryLimit = 50

	// recentWindow is the window size for the improvement comparison.
	recentWindow = 5
)

// Memory is the store object for one harness instance: it assigns run ids,
// records evaluated traces, promotes repeated mistake patterns into
// constraints, and flushes everything through its Store after each run.
// It is exclusively owned by the driving loop; no internal locking.
type Memory struct {
	store Store

	runCounter  int
	history     []*trace.ExecutionTrace
	patterns    map[string]int
	constraints []Constraint

	// First-occurrence order of pattern keys, so the learning pass visits
	// them deterministically.
	patternOrder []string
}

// Statistics summarizes the learning progress so far.
type Statistics struct {
	TotalRuns          int            `json:"total_runs"`
	SuccessfulRuns     int            `json:"successful_runs"`
	TotalMistakes      int            `json:"total_mistakes"`
	LearnedConstraints int            `json:"learned_constraints"`
	ImprovementRate    float64        `json:"improvement_rate"`
	MistakePatterns    map[string]int `json:"mistake_patterns"`
}

// Open loads prior state from the store, or starts empty when none exists.
func Open(store Store) (*Memory, error) {
	snapshot, err := store.Load()
	if err != nil {
		return nil, err
	}

	m := &Memory{
		store:       store,
		runCounter:  snapshot.RunCounter,
		history:     snapshot.History,
		patterns:    snapshot.Patterns,
		constraints: snapshot.Constraints,
	}

	m.patternOrder = make([]string, 0, len(m.patterns))
	for key := range m.patterns {
		m.patternOrder = append(m.patternOrder, key)
	}
	sort.Strings(m.patternOrder)

	return m, nil
}

// CreateTrace increments the run counter and returns a fresh empty trace.
// The counter moves even if the trace is never saved.
func (m *Memory) CreateTrace(task string) *trace.ExecutionTrace {
	m.runCounter++
	return trace.New(m.runCounter, task, time.Now())
}

// SaveTrace appends the evaluated trace to history, folds its mistakes into
// the pattern counts, runs the learning pass, and flushes the whole state.
// This is the only write path to durable storage.
func (m *Memory) SaveTrace(t *trace.ExecutionTrace) error {
	if t == nil {
		return errors.New(errors.InvalidInput, "cannot save a nil trace")
	}

	m.history = append(m.history, t)

	for i := range t.Mistakes {
		key := t.Mistakes[i].PatternKey()
		if _, seen := m.patterns[key]; !seen {
			m.patternOrder = append(m.patternOrder, key)
		}
		m.patterns[key]++
	}

	m.learnFromPatterns()

	return m.Flush()
}

// learnFromPatterns promotes every pattern at or past the threshold into a
// constraint, unless one already exists for that key. The constraint text is
// frozen with the count at the moment of creation.
func (m *Memory) learnFromPatterns() {
	existing := make(map[string]bool, len(m.constraints))
	for _, c := range m.constraints {
		existing[c.PatternKey] = true
	}

	for _, key := range m.patternOrder {
		count := m.patterns[key]
		if count < ConstraintThreshold || existing[key] {
			continue
		}

		text, ok := constraintText(key, count)
		if !ok {
			continue
		}

		m.constraints = append(m.constraints, Constraint{
			PatternKey:  key,
			Text:        text,
			Occurrences: count,
			CreatedAt:   time.Now(),
		})
		existing[key] = true
	}
}

// constraintText renders the per-kind template for a pattern key.
func constraintText(patternKey string, count int) (string, bool) {
	kindName, description, found := strings.Cut(patternKey, ":")
	if !found {
		return "", false
	}

	kind, err := trace.ParseMistakeKind(kindName)
	if err != nil {
		return "", false
	}

	var base string
	switch kind {
	case trace.MissingRequiredTool:
		base = fmt.Sprintf("ALWAYS use the required tool mentioned: %s", description)
	case trace.WrongSequence:
		base = fmt.Sprintf("Follow the correct tool sequence: %s", description)
	case trace.TooEarlyAnswer:
		base = "Do NOT provide a final answer until ALL necessary tools have been called"
	case trace.IgnoredToolOutput:
		base = fmt.Sprintf("MUST incorporate tool outputs into your answer: %s", description)
	case trace.WrongTool:
		base = fmt.Sprintf("Use the correct tool: %s", description)
	default:
		return "", false
	}

	return fmt.Sprintf("%s (learned from %d past mistakes)", base, count), true
}

// ActiveConstraints returns the learned constraint texts in trigger order.
func (m *Memory) ActiveConstraints() []string {
	texts := make([]string, len(m.constraints))
	for i, c := range m.constraints {
		texts[i] = c.Text
	}
	return texts
}

// Constraints returns a copy of the full constraint records.
func (m *Memory) Constraints() []Constraint {
	out := make([]Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

// History returns the in-memory trace history.
func (m *Memory) History() []*trace.ExecutionTrace {
	return m.history
}

// Statistics computes the learning summary. The improvement rate compares
// the most recent five runs' mistake total against the preceding five and is
// zero until ten runs exist. The divisor floors at 1, so a clean previous
// window with a bad recent one yields large negative percentages.
func (m *Memory) Statistics() Statistics {
	stats := Statistics{
		TotalRuns:          len(m.history),
		LearnedConstraints: len(m.constraints),
		MistakePatterns:    make(map[string]int, len(m.patterns)),
	}
	for key, count := range m.patterns {
		stats.MistakePatterns[key] = count
	}

	for _, t := range m.history {
		if t.Success {
			stats.SuccessfulRuns++
		}
		stats.TotalMistakes += len(t.Mistakes)
	}

	if len(m.history) >= 2*recentWindow {
		recent := 0
		for _, t := range m.history[len(m.history)-recentWindow:] {
			recent += len(t.Mistakes)
		}
		previous := 0
		for _, t := range m.history[len(m.history)-2*recentWindow : len(m.history)-recentWindow] {
			previous += len(t.Mistakes)
		}

		divisor := previous
		if divisor < 1 {
			divisor = 1
		}
		improvement := float64(previous-recent) / float64(divisor) * 100
		stats.ImprovementRate = math.Round(improvement*100) / 100
	}

	return stats
}

// Flush persists the entire state. The persisted history is truncated to the
// most recent HistoryLimit traces; the in-memory list is left intact.
func (m *Memory) Flush() error {
	history := m.history
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}

	return m.store.Save(&Snapshot{
		Version:     snapshotVersion,
		RunCounter:  m.runCounter,
		Constraints: m.constraints,
		Patterns:    m.patterns,
		History:     history,
	})
}

// Close flushes and releases the underlying store.
func (m *Memory) Close() error {
	if err := m.Flush(); err != nil {
		m.store.Close()
		return err
	}
	return m.store.Close()
}
