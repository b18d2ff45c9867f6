// Package evaluator turns the raw message log of a finished agent run into a
// populated execution trace with classified mistakes.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/aletheia-ai/retrace/pkg/llm"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

// Expected tool usage for travel planning.
var (
	// RequiredTools must appear in every run.
	RequiredTools = []string{"check_weather"}

	// RecommendedSequence is the order the tools are meant to be used in.
	RecommendedSequence = []string{
		"check_weather",
		"search_flights",
		"recommend_hotels",
		"create_itinerary",
	}
)

// genericPhrases mark a final answer that ignored the tool outputs.
var genericPhrases = []string{
	"i cannot",
	"i don't have access",
	"i'm unable to",
	"i can't help",
}

// minToolCalls is the minimum number of tool calls expected before a final
// answer is acceptable.
const minToolCalls = 2

// Evaluator detects rule-based mistakes in agent executions.
type Evaluator struct {
	requiredTools []string
}

// New creates an evaluator with the default required-tool set.
func New() *Evaluator {
	return &Evaluator{requiredTools: RequiredTools}
}

// Evaluate extracts tool calls and the final answer from the raw message log
// into the trace, runs every mistake check, and derives the success flag.
// It mutates and returns the same trace. Deterministic given the same log.
func (e *Evaluator) Evaluate(t *trace.ExecutionTrace, messages []llm.Message) *trace.ExecutionTrace {
	e.extractToolCalls(t, messages)

	e.checkMissingRequiredTools(t)
	e.checkToolSequence(t)
	e.checkEarlyTermination(t)
	e.checkToolOutputUsage(t)

	t.Success = len(t.Mistakes) == 0

	return t
}

// extractToolCalls walks the log in order. Every assistant tool use becomes
// one ToolCall whose output is the first later tool result with a matching
// correlation id (empty string when none settled). The last plain assistant
// text message wins as the final answer.
func (e *Evaluator) extractToolCalls(t *trace.ExecutionTrace, messages []llm.Message) {
	for i, msg := range messages {
		if msg.Role != llm.RoleAssistant {
			continue
		}

		for _, tu := range msg.ToolUses {
			output := ""
			for _, m := range messages[i+1:] {
				if m.Role == llm.RoleTool && m.ToolResult != nil && m.ToolResult.ToolUseID == tu.ID {
					output = m.ToolResult.Content
					break
				}
			}
			t.AddToolCall(tu.Name, tu.Arguments, output)
		}

		if msg.IsFinalAnswer() {
			t.SetFinalAnswer(msg.Content)
		}
	}
}

func (e *Evaluator) checkMissingRequiredTools(t *trace.ExecutionTrace) {
	used := make(map[string]bool)
	for _, call := range t.ToolCalls {
		used[call.Tool] = true
	}

	for _, required := range e.requiredTools {
		if !used[required] {
			t.AddMistake(trace.MissingRequiredTool,
				"Required tool '"+required+"' was not used", nil)
		}
	}
}

// checkToolSequence runs three independent ordering checks over the tool
// name sequence. Runs with fewer than two calls are exempt.
func (e *Evaluator) checkToolSequence(t *trace.ExecutionTrace) {
	if len(t.ToolCalls) < 2 {
		return
	}

	names := t.ToolNames()

	hotelIdx := indexOf(names, "recommend_hotels")
	flightIdx := indexOf(names, "search_flights")
	if hotelIdx >= 0 && flightIdx >= 0 && hotelIdx < flightIdx {
		t.AddMistake(trace.WrongSequence,
			"Hotels were recommended before searching for flights",
			trace.Step(hotelIdx+1))
	}

	if itineraryIdx := indexOf(names, "create_itinerary"); itineraryIdx >= 0 && itineraryIdx < len(names)-1 {
		t.AddMistake(trace.WrongSequence,
			"Itinerary was created before completing other planning steps",
			trace.Step(itineraryIdx+1))
	}

	if weatherIdx := indexOf(names, "check_weather"); weatherIdx > 0 {
		t.AddMistake(trace.WrongSequence,
			"Weather should be checked before other tools",
			trace.Step(weatherIdx+1))
	}
}

func (e *Evaluator) checkEarlyTermination(t *trace.ExecutionTrace) {
	if t.FinalAnswer != "" && len(t.ToolCalls) < minToolCalls {
		t.AddMistake(trace.TooEarlyAnswer,
			fmt.Sprintf("Agent provided final answer after only %d tool calls", len(t.ToolCalls)),
			trace.Step(len(t.ToolCalls)))
	}
}

func (e *Evaluator) checkToolOutputUsage(t *trace.ExecutionTrace) {
	if t.FinalAnswer == "" || len(t.ToolCalls) == 0 {
		return
	}

	answer := strings.ToLower(t.FinalAnswer)
	for _, phrase := range genericPhrases {
		if strings.Contains(answer, phrase) {
			t.AddMistake(trace.IgnoredToolOutput,
				"Agent ignored tool outputs and provided generic response",
				trace.Step(len(t.ToolCalls)+1))
			return
		}
	}
}

func indexOf(names []string, target string) int {
	for i, name := range names {
		if name == target {
			return i
		}
	}
	return -1
}
