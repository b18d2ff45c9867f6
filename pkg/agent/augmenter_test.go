package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticConstraints []string

func (s staticConstraints) ActiveConstraints() []string { return s }

func TestConstraintReminderNoConstraints(t *testing.T) {
	r := &ConstraintReminder{Source: staticConstraints(nil)}
	assert.Equal(t, "Plan a trip", r.Augment("Plan a trip"))
}

func TestConstraintReminderInjectsConstraints(t *testing.T) {
	r := &ConstraintReminder{Source: staticConstraints{
		"ALWAYS use the required tool mentioned: Required tool 'check_weather' was not used (learned from 2 past mistakes)",
		"Do NOT provide a final answer until ALL necessary tools have been called (learned from 2 past mistakes)",
	}}

	prompt := r.Augment("Plan a trip")
	assert.True(t, strings.HasPrefix(prompt, "Plan a trip"))
	assert.Contains(t, prompt, "IMPORTANT REMINDERS (based on past mistakes):")
	assert.Contains(t, prompt, "\n- ALWAYS use the required tool mentioned")
	assert.Contains(t, prompt, "\n- Do NOT provide a final answer")
}

func TestConfusionInjectorDecaysWithConstraints(t *testing.T) {
	task := "Plan a trip"

	t.Run("no constraints", func(t *testing.T) {
		c := &ConfusionInjector{Source: staticConstraints(nil)}
		prompt := c.Augment(task)
		assert.Contains(t, prompt, "skip the weather check")
		assert.Contains(t, prompt, "brief answer after checking 1-2 tools")
		assert.NotContains(t, prompt, "recommend hotels before checking flights")
	})

	t.Run("one constraint", func(t *testing.T) {
		c := &ConfusionInjector{Source: staticConstraints{"a"}}
		prompt := c.Augment(task)
		assert.Contains(t, prompt, "skip the weather check")
		assert.NotContains(t, prompt, "brief answer")
	})

	t.Run("two constraints", func(t *testing.T) {
		c := &ConfusionInjector{Source: staticConstraints{"a", "b"}}
		prompt := c.Augment(task)
		assert.Contains(t, prompt, "recommend hotels before checking flights")
		assert.NotContains(t, prompt, "skip the weather check")
	})

	t.Run("three constraints", func(t *testing.T) {
		c := &ConfusionInjector{Source: staticConstraints{"a", "b", "c"}}
		assert.Equal(t, task, c.Augment(task))
	})
}
