// Package agent drives one tool-using run of the language model and returns
// the raw message log for evaluation.
package agent

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/aletheia-ai/retrace/pkg/errors"
	"github.com/aletheia-ai/retrace/pkg/llm"
	"github.com/aletheia-ai/retrace/pkg/logging"
	"github.com/aletheia-ai/retrace/pkg/tools"
)

const defaultMaxIterations = 10

// Agent runs a task against the model, executing requested tools until the
// model produces a plain-text answer.
type Agent struct {
	client        llm.Client
	registry      *tools.Registry
	augmenters    []Augmenter
	maxIterations int
}

// Option configures an Agent.
type Option func(*Agent)

// WithAugmenters sets the prompt augmenters, applied in order to the task.
func WithAugmenters(augmenters ...Augmenter) Option {
	return func(a *Agent) {
		a.augmenters = augmenters
	}
}

// WithMaxIterations bounds the model/tool round trips per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// New creates an agent over the given model client and tool registry.
func New(client llm.Client, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		client:        client,
		registry:      registry,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the task to completion and returns the full message log,
// including the log accumulated so far when the model errors mid-run.
func (a *Agent) Run(ctx context.Context, task string) ([]llm.Message, error) {
	logger := logging.GetLogger()

	prompt := task
	for _, aug := range a.augmenters {
		prompt = aug.Augment(prompt)
	}

	messages := []llm.Message{llm.NewHumanMessage(prompt)}
	specs := a.toolSpecs()

	for i := 0; i < a.maxIterations; i++ {
		reply, err := a.client.Generate(ctx, messages, specs)
		if err != nil {
			return messages, errors.Wrap(err, errors.LLMGenerationFailed, "model invocation failed")
		}
		messages = append(messages, reply)

		if len(reply.ToolUses) == 0 {
			return messages, nil
		}

		logger.Debug(ctx, "executing %d tool call(s)", len(reply.ToolUses))
		results, err := a.executeToolUses(ctx, reply.ToolUses)
		if err != nil {
			return messages, err
		}
		messages = append(messages, results...)
	}

	logger.Warn(ctx, "run ended without a final answer after %d iterations", a.maxIterations)
	return messages, nil
}

// executeToolUses settles every invocation from one assistant turn. The
// calls run concurrently; results keep invocation order so the log stays
// deterministic.
func (a *Agent) executeToolUses(ctx context.Context, toolUses []llm.ToolUse) ([]llm.Message, error) {
	results := make([]llm.Message, len(toolUses))

	p := pool.New().WithContext(ctx)
	for i, tu := range toolUses {
		i, tu := i, tu
		p.Go(func(ctx context.Context) error {
			tool, err := a.registry.Get(tu.Name)
			if err != nil {
				// Unknown tool names yield an error payload instead of
				// failing the run; the evaluator judges the behaviour.
				results[i] = llm.NewToolResultMessage(tu.ID, fmt.Sprintf("error: no such tool %q", tu.Name))
				return nil
			}

			result, err := tool.Call(ctx, tu.Arguments)
			if err != nil {
				return errors.WithFields(
					errors.Wrap(err, errors.ToolExecutionFailed, "tool execution failed"),
					errors.Fields{"tool": tu.Name})
			}

			results[i] = llm.NewToolResultMessage(tu.ID, tools.ExtractText(result))
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Agent) toolSpecs() []llm.ToolSpec {
	list := a.registry.List()
	specs := make([]llm.ToolSpec, 0, len(list))
	for _, t := range list {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Schema:      t.InputSchema(),
		})
	}
	return specs
}
