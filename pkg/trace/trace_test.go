package trace

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistakeKindNames(t *testing.T) {
	cases := []struct {
		kind MistakeKind
		name string
	}{
		{MissingRequiredTool, "missing_required_tool"},
		{WrongTool, "wrong_tool"},
		{WrongSequence, "wrong_sequence"},
		{TooEarlyAnswer, "too_early_answer"},
		{IgnoredToolOutput, "ignored_tool_output"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.kind.String())

			parsed, err := ParseMistakeKind(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, parsed)
		})
	}
}

func TestParseMistakeKindUnknown(t *testing.T) {
	_, err := ParseMistakeKind("execution_error")
	assert.Error(t, err)
}

func TestMistakeKindJSON(t *testing.T) {
	data, err := json.Marshal(WrongSequence)
	require.NoError(t, err)
	assert.Equal(t, `"wrong_sequence"`, string(data))

	var kind MistakeKind
	require.NoError(t, json.Unmarshal([]byte(`"too_early_answer"`), &kind))
	assert.Equal(t, TooEarlyAnswer, kind)

	assert.Error(t, json.Unmarshal([]byte(`"not_a_kind"`), &kind))
}

func TestAddToolCallAssignsOrder(t *testing.T) {
	tr := New(1, "plan a trip", time.Now())

	tr.AddToolCall("check_weather", map[string]any{"city": "Paris"}, `{"condition":"sunny"}`)
	tr.AddToolCall("search_flights", nil, "")

	require.Len(t, tr.ToolCalls, 2)
	assert.Equal(t, 1, tr.ToolCalls[0].Order)
	assert.Equal(t, 2, tr.ToolCalls[1].Order)
	assert.Equal(t, []string{"check_weather", "search_flights"}, tr.ToolNames())
}

func TestPatternKey(t *testing.T) {
	m := Mistake{Kind: MissingRequiredTool, Description: "Required tool 'check_weather' was not used"}
	assert.Equal(t, "missing_required_tool:Required tool 'check_weather' was not used", m.PatternKey())
}

func TestTraceJSONRoundTrip(t *testing.T) {
	tr := New(7, "plan a trip", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tr.AddToolCall("check_weather", map[string]any{"city": "Paris"}, "sunny")
	tr.SetFinalAnswer("done")
	tr.AddMistake(TooEarlyAnswer, "Agent provided final answer after only 1 tool calls", Step(1))

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":7`)
	assert.Contains(t, string(data), `"kind":"too_early_answer"`)

	var decoded ExecutionTrace
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tr.RunID, decoded.RunID)
	assert.Equal(t, tr.ToolNames(), decoded.ToolNames())
	require.Len(t, decoded.Mistakes, 1)
	assert.Equal(t, TooEarlyAnswer, decoded.Mistakes[0].Kind)
	require.NotNil(t, decoded.Mistakes[0].Step)
	assert.Equal(t, 1, *decoded.Mistakes[0].Step)
}
