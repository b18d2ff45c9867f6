// Package trace defines the record of a single agent run: the ordered tool
// calls it made, the answer it produced, and the mistakes detected in it.
package trace

import (
	"encoding/json"
	"fmt"
	"time"
)

// MistakeKind identifies a category of rule-detected tool-usage mistakes.
type MistakeKind int

const (
	MissingRequiredTool MistakeKind = iota
	WrongTool
	WrongSequence
	TooEarlyAnswer
	IgnoredToolOutput
)

var kindNames = [...]string{
	"missing_required_tool",
	"wrong_tool",
	"wrong_sequence",
	"too_early_answer",
	"ignored_tool_output",
}

// String returns the stable wire name for the kind. Pattern keys are built
// from this, so the names must never change.
func (k MistakeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
	return kindNames[k]
}

// ParseMistakeKind converts a wire name back to a MistakeKind.
func ParseMistakeKind(s string) (MistakeKind, error) {
	for i, name := range kindNames {
		if name == s {
			return MistakeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mistake kind %q", s)
}

// MarshalJSON encodes the kind as its stable wire name.
func (k MistakeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the kind from its stable wire name.
func (k *MistakeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMistakeKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ToolCall records a single tool invocation and its settled output.
// Immutable once appended to a trace.
type ToolCall struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Output    string         `json:"output"`
	Order     int            `json:"order"` // 1-indexed position in call order
}

// Mistake is a rule-detected deviation from expected tool usage.
type Mistake struct {
	Kind        MistakeKind `json:"kind"`
	Description string      `json:"description"`
	Step        *int        `json:"step,omitempty"` // 1-indexed, nil when not tied to a step
	DetectedAt  time.Time   `json:"detected_at"`
}

// PatternKey returns the cross-run aggregation key for this mistake.
func (m *Mistake) PatternKey() string {
	return m.Kind.String() + ":" + m.Description
}

// ExecutionTrace is the record of one complete agent run.
type ExecutionTrace struct {
	RunID       int         `json:"run_id"`
	Task        string      `json:"task"`
	CreatedAt   time.Time   `json:"timestamp"`
	ToolCalls   []ToolCall  `json:"tool_calls"`
	FinalAnswer string      `json:"final_answer"`
	Success     bool        `json:"success"`
	Mistakes    []Mistake   `json:"mistakes"`
}

// New creates an empty trace stamped with a run id and creation time.
func New(runID int, task string, createdAt time.Time) *ExecutionTrace {
	return &ExecutionTrace{
		RunID:     runID,
		Task:      task,
		CreatedAt: createdAt,
		ToolCalls: make([]ToolCall, 0),
		Mistakes:  make([]Mistake, 0),
	}
}

// AddToolCall appends a tool call, assigning the next 1-indexed order.
func (t *ExecutionTrace) AddToolCall(tool string, arguments map[string]any, output string) {
	t.ToolCalls = append(t.ToolCalls, ToolCall{
		Tool:      tool,
		Arguments: arguments,
		Output:    output,
		Order:     len(t.ToolCalls) + 1,
	})
}

// SetFinalAnswer records the run's final textual answer.
func (t *ExecutionTrace) SetFinalAnswer(answer string) {
	t.FinalAnswer = answer
}

// AddMistake appends a detected mistake. step is 1-indexed; pass a nil
// pointer when the mistake is not tied to a position.
func (t *ExecutionTrace) AddMistake(kind MistakeKind, description string, step *int) {
	t.Mistakes = append(t.Mistakes, Mistake{
		Kind:        kind,
		Description: description,
		Step:        step,
		DetectedAt:  time.Now(),
	})
}

// ToolNames returns the ordered sequence of tool names used in the run.
func (t *ExecutionTrace) ToolNames() []string {
	names := make([]string, len(t.ToolCalls))
	for i, call := range t.ToolCalls {
		names[i] = call.Tool
	}
	return names
}

// Step is a convenience for building *int step values.
func Step(n int) *int {
	return &n
}
