package runner

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-ai/retrace/internal/testutil"
	"github.com/aletheia-ai/retrace/pkg/agent"
	"github.com/aletheia-ai/retrace/pkg/evaluator"
	"github.com/aletheia-ai/retrace/pkg/llm"
	"github.com/aletheia-ai/retrace/pkg/memory"
	"github.com/aletheia-ai/retrace/pkg/tools"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

func openMemory(t *testing.T) *memory.Memory {
	t.Helper()
	m, err := memory.Open(memory.NewFileStore(filepath.Join(t.TempDir(), "state.json")))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func travelRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range tools.NewTravelTools(rand.New(rand.NewSource(1))) {
		require.NoError(t, registry.Register(tool))
	}
	return registry
}

func TestRunOnceEvaluatesAndSaves(t *testing.T) {
	mem := openMemory(t)
	ag := agent.New(llm.NewScriptedClient(), travelRegistry(t))
	r := New(mem, evaluator.New(), ag)

	tr, err := r.RunOnce(context.Background(), "Plan a 5-day trip to Paris from New York.")
	require.NoError(t, err)

	assert.Equal(t, 1, tr.RunID)
	assert.True(t, tr.Success)
	assert.Equal(t, []string{"check_weather", "search_flights", "recommend_hotels", "create_itinerary"}, tr.ToolNames())
	assert.Len(t, mem.History(), 1)
}

func TestRunOnceSavesDegradedTraceOnAgentFailure(t *testing.T) {
	client := new(testutil.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Message{}, fmt.Errorf("model unavailable"))

	mem := openMemory(t)
	r := New(mem, evaluator.New(), agent.New(client, tools.NewRegistry()))

	tr, err := r.RunOnce(context.Background(), "Plan a trip")
	require.Error(t, err)
	require.NotNil(t, tr)

	assert.False(t, tr.Success)
	require.Len(t, tr.Mistakes, 1)
	assert.Equal(t, trace.WrongTool, tr.Mistakes[0].Kind)
	assert.Contains(t, tr.Mistakes[0].Description, "Agent execution failed")

	// The degraded trace is persisted and the counter moved.
	assert.Len(t, mem.History(), 1)
	assert.Equal(t, 2, mem.CreateTrace("Plan a trip").RunID)
}

func TestRunDemoContinuesAfterAgentFailures(t *testing.T) {
	client := new(testutil.MockClient)
	client.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(llm.Message{}, fmt.Errorf("model unavailable"))

	mem := openMemory(t)
	r := New(mem, evaluator.New(), agent.New(client, tools.NewRegistry()))

	var observed int
	err := r.RunDemo(context.Background(), 3, []string{"Plan a trip"}, func(*trace.ExecutionTrace) {
		observed++
	})
	require.NoError(t, err)

	assert.Equal(t, 3, observed)
	assert.Len(t, mem.History(), 3)
}

// TestRunDemoLearnsFromMistakes exercises the whole loop with the scripted
// model: early destabilized runs produce mistakes, repeated patterns become
// constraints, and the later runs come out clean.
func TestRunDemoLearnsFromMistakes(t *testing.T) {
	mem := openMemory(t)

	ag := agent.New(llm.NewScriptedClient(), travelRegistry(t),
		agent.WithAugmenters(
			&agent.ConfusionInjector{Source: mem},
			&agent.ConstraintReminder{Source: mem},
		))
	r := New(mem, evaluator.New(), ag)

	var traces []*trace.ExecutionTrace
	err := r.RunDemo(context.Background(), 10,
		[]string{"Plan a 5-day trip to Paris from New York."},
		func(tr *trace.ExecutionTrace) { traces = append(traces, tr) })
	require.NoError(t, err)
	require.Len(t, traces, 10)

	// Runs 1-2: weather skipped and answered early, twice each.
	for _, tr := range traces[:2] {
		assert.False(t, tr.Success)
		assert.Len(t, tr.Mistakes, 2)
	}

	// Runs 3-4: the first two constraints hold, the remaining hint swaps
	// hotels ahead of flights.
	for _, tr := range traces[2:4] {
		assert.False(t, tr.Success)
		require.Len(t, tr.Mistakes, 1)
		assert.Equal(t, trace.WrongSequence, tr.Mistakes[0].Kind)
	}

	// Runs 5-10: all three constraints hold; no hints survive.
	for _, tr := range traces[4:] {
		assert.True(t, tr.Success, "run %d should be clean", tr.RunID)
		assert.Equal(t, []string{"check_weather", "search_flights", "recommend_hotels", "create_itinerary"}, tr.ToolNames())
	}

	constraints := mem.ActiveConstraints()
	require.Len(t, constraints, 3)
	assert.Contains(t, constraints[0], "ALWAYS use the required tool")
	assert.Contains(t, constraints[1], "Do NOT provide a final answer")
	assert.Contains(t, constraints[2], "Follow the correct tool sequence")

	stats := r.Statistics()
	assert.Equal(t, 10, stats.TotalRuns)
	assert.Equal(t, 6, stats.SuccessfulRuns)
	assert.Equal(t, 6, stats.TotalMistakes)
	assert.Equal(t, 3, stats.LearnedConstraints)
	assert.Equal(t, float64(100), stats.ImprovementRate)
}

// Learned state must keep steering the agent in a fresh process.
func TestLearningPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	open := func() (*memory.Memory, *Runner) {
		m, err := memory.Open(memory.NewFileStore(path))
		require.NoError(t, err)
		ag := agent.New(llm.NewScriptedClient(), travelRegistry(t),
			agent.WithAugmenters(
				&agent.ConfusionInjector{Source: m},
				&agent.ConstraintReminder{Source: m},
			))
		return m, New(m, evaluator.New(), ag)
	}

	mem, r := open()
	require.NoError(t, r.RunDemo(context.Background(), 4,
		[]string{"Plan a 5-day trip to Paris from New York."}, nil))
	require.Len(t, mem.ActiveConstraints(), 3)
	require.NoError(t, mem.Close())

	mem, r = open()
	defer mem.Close()
	assert.Len(t, mem.ActiveConstraints(), 3)

	tr, err := r.RunOnce(context.Background(), "Plan a 5-day trip to Paris from New York.")
	require.NoError(t, err)
	assert.Equal(t, 5, tr.RunID)
	assert.True(t, tr.Success)
}
