// Package runner sequences the demonstration loop: run the agent, evaluate
// the message log, save the trace, repeat. Runs are strictly sequential;
// each trace is fully flushed before the next run starts.
package runner

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/aletheia-ai/retrace/pkg/agent"
	"github.com/aletheia-ai/retrace/pkg/errors"
	"github.com/aletheia-ai/retrace/pkg/evaluator"
	"github.com/aletheia-ai/retrace/pkg/logging"
	"github.com/aletheia-ai/retrace/pkg/memory"
	"github.com/aletheia-ai/retrace/pkg/trace"
)

// Runner owns the per-run pipeline. The memory store is exclusively owned by
// this loop.
type Runner struct {
	memory    *memory.Memory
	evaluator *evaluator.Evaluator
	agent     *agent.Agent
}

// New assembles a runner.
func New(mem *memory.Memory, eval *evaluator.Evaluator, ag *agent.Agent) *Runner {
	return &Runner{memory: mem, evaluator: eval, agent: ag}
}

// RunOnce executes one task end to end and returns the saved trace. If the
// agent invocation fails, a degraded trace with a synthetic mistake is still
// saved so the run counter increment is never lost, and the error is
// returned alongside it.
func (r *Runner) RunOnce(ctx context.Context, task string) (*trace.ExecutionTrace, error) {
	logger := logging.GetLogger()

	t := r.memory.CreateTrace(task)
	ctx = logging.WithRunID(ctx, t.RunID)
	logger.Info(ctx, "starting run: %s", task)

	messages, runErr := r.agent.Run(ctx, task)
	if runErr != nil {
		logger.Error(ctx, "agent run failed: %v", runErr)
		t.AddMistake(trace.WrongTool, fmt.Sprintf("Agent execution failed: %v", runErr), nil)
		t.Success = false
		if err := r.memory.SaveTrace(t); err != nil {
			return t, err
		}
		return t, runErr
	}

	r.evaluator.Evaluate(t, messages)

	if err := r.memory.SaveTrace(t); err != nil {
		return t, err
	}

	logger.Info(ctx, "run finished: success=%v mistakes=%d tools=%d",
		t.Success, len(t.Mistakes), len(t.ToolCalls))
	return t, nil
}

// Observer is invoked after every completed run with its saved trace.
type Observer func(*trace.ExecutionTrace)

// RunDemo executes n runs, cycling through the task list. Agent failures are
// recorded and the loop continues; persistence failures abort.
func (r *Runner) RunDemo(ctx context.Context, n int, tasks []string, observe Observer) error {
	logger := logging.GetLogger()

	for i := 0; i < n; i++ {
		task := tasks[i%len(tasks)]

		t, err := r.RunOnce(ctx, task)
		if err != nil {
			var e *errors.Error
			if goerrors.As(err, &e) && e.Code() == errors.PersistenceFailed {
				return err
			}
			logger.Warn(ctx, "continuing after failed run: %v", err)
		}
		if observe != nil && t != nil {
			observe(t)
		}
	}

	return nil
}

// Statistics exposes the memory store's summary to the CLI layer.
func (r *Runner) Statistics() memory.Statistics {
	return r.memory.Statistics()
}
