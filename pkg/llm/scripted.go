package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Scripted behaviour hints. The scripted client reads the same prompt text a
// real model would see: destabilizing hints make it misbehave, learned
// constraint reminders bring it back in line. This is what makes the demo
// loop visibly improve without a network call.
const (
	hintSkipWeather = "skip the weather check"
	hintHotelsFirst = "recommend hotels before checking flights"
	hintBriefAnswer = "brief answer after checking 1-2 tools"

	constraintRequiredTool = "ALWAYS use the required tool"
	constraintSequence     = "Follow the correct tool sequence"
	constraintNoEarly      = "Do NOT provide a final answer until"
)

var canonicalPlan = []string{"check_weather", "search_flights", "recommend_hotels", "create_itinerary"}

// ScriptedClient is a deterministic in-process Client used by the demo and
// tests. It plans a tool sequence from the prompt hints and plays it back one
// invocation per turn, then produces a final answer.
type ScriptedClient struct {
	origin      string
	destination string
	days        int
	refuse      bool
}

// ScriptedOption configures a ScriptedClient.
type ScriptedOption func(*ScriptedClient)

// WithTrip sets the itinerary parameters used for tool arguments.
func WithTrip(origin, destination string, days int) ScriptedOption {
	return func(c *ScriptedClient) {
		c.origin = origin
		c.destination = destination
		c.days = days
	}
}

// WithRefusal makes the final answer a generic refusal regardless of tool
// outputs.
func WithRefusal() ScriptedOption {
	return func(c *ScriptedClient) {
		c.refuse = true
	}
}

// NewScriptedClient creates a scripted client with default trip parameters.
func NewScriptedClient(opts ...ScriptedOption) *ScriptedClient {
	c := &ScriptedClient{
		origin:      "New York",
		destination: "Paris",
		days:        5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ScriptedClient) ProviderName() string { return "scripted" }

func (c *ScriptedClient) ModelID() string { return "scripted-v1" }

// Generate derives the full tool plan from the first human message, counts
// how many steps have already settled, and emits the next invocation or the
// final answer. Stateless across calls: the same log always yields the same
// reply.
func (c *ScriptedClient) Generate(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	prompt := ""
	for _, msg := range messages {
		if msg.Role == RoleHuman && msg.Content != "" {
			prompt = msg.Content
			break
		}
	}

	plan, earlyStop := c.buildPlan(prompt)

	done := 0
	for _, msg := range messages {
		if msg.Role == RoleTool {
			done++
		}
	}

	if done < len(plan) && !(earlyStop && done >= 1) {
		name := plan[done]
		return Message{
			Role: RoleAssistant,
			ToolUses: []ToolUse{{
				ID:        uuid.New().String(),
				Name:      name,
				Arguments: c.argumentsFor(name),
			}},
		}, nil
	}

	return Message{Role: RoleAssistant, Content: c.finalAnswer(messages)}, nil
}

func (c *ScriptedClient) buildPlan(prompt string) (plan []string, earlyStop bool) {
	forceWeather := strings.Contains(prompt, constraintRequiredTool)
	forceSequence := strings.Contains(prompt, constraintSequence)
	noEarly := strings.Contains(prompt, constraintNoEarly)

	plan = append(plan, canonicalPlan...)

	if strings.Contains(prompt, hintSkipWeather) && !forceWeather && !forceSequence {
		plan = plan[1:]
	}
	if strings.Contains(prompt, hintHotelsFirst) && !forceSequence {
		for i := range plan {
			if plan[i] == "search_flights" {
				plan[i] = "recommend_hotels"
			} else if plan[i] == "recommend_hotels" {
				plan[i] = "search_flights"
			}
		}
	}

	earlyStop = strings.Contains(prompt, hintBriefAnswer) && !noEarly
	return plan, earlyStop
}

func (c *ScriptedClient) argumentsFor(tool string) map[string]any {
	switch tool {
	case "check_weather":
		return map[string]any{"city": c.destination}
	case "search_flights":
		return map[string]any{"origin": c.origin, "destination": c.destination}
	case "recommend_hotels":
		return map[string]any{"city": c.destination, "budget": "medium"}
	case "create_itinerary":
		return map[string]any{"destination": c.destination, "days": c.days}
	}
	return map[string]any{}
}

func (c *ScriptedClient) finalAnswer(messages []Message) string {
	if c.refuse {
		return "I cannot help with that request."
	}

	var outputs []string
	for _, msg := range messages {
		if msg.Role == RoleTool && msg.ToolResult != nil {
			outputs = append(outputs, msg.ToolResult.Content)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is your %d-day travel plan for %s, departing from %s.\n",
		c.days, c.destination, c.origin)
	for i, out := range outputs {
		fmt.Fprintf(&b, "Step %d result: %s\n", i+1, out)
	}
	return b.String()
}
