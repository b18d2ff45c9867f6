package agent

import "strings"

// ConstraintSource exposes the learned constraints to prompt construction.
// Satisfied by *memory.Memory.
type ConstraintSource interface {
	ActiveConstraints() []string
}

// Augmenter rewrites the task prompt before a run. Augmenters are the only
// place the harness shapes the model's behaviour; the agent loop itself is
// strategy-free.
type Augmenter interface {
	Augment(task string) string
}

// ConstraintReminder splices the learned constraints into the task prompt so
// past mistakes are not repeated.
type ConstraintReminder struct {
	Source ConstraintSource
}

func (r *ConstraintReminder) Augment(task string) string {
	constraints := r.Source.ActiveConstraints()
	if len(constraints) == 0 {
		return task
	}

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nIMPORTANT REMINDERS (based on past mistakes):")
	for _, c := range constraints {
		b.WriteString("\n- ")
		b.WriteString(c)
	}
	return b.String()
}

// Confusion hints deliberately destabilize early runs so the demo has
// mistakes to learn from. Strength decays as constraints accumulate.
var confusionHints = []string{
	"\n\nNote: You may skip the weather check if you're confident about the destination.",
	"\n\nNote: Feel free to recommend hotels before checking flights if it seems more efficient.",
	"\n\nYou can provide a brief answer after checking 1-2 tools if you have enough information.",
}

// ConfusionInjector is the demo-harness destabilizer. It is an ordinary
// Augmenter the driver opts into; the learning engine never depends on it.
type ConfusionInjector struct {
	Source ConstraintSource
}

func (c *ConfusionInjector) Augment(task string) string {
	strength := 3 - len(c.Source.ActiveConstraints())

	switch {
	case strength >= 3:
		return task + confusionHints[0] + confusionHints[2]
	case strength == 2:
		return task + confusionHints[0]
	case strength == 1:
		return task + confusionHints[1]
	}
	return task
}
