// Package retrace is a demonstration harness for a self-improving tool-using
// agent. It runs a travel-planning agent against a language model, detects
// rule-based mistakes in how the agent used its tools, and promotes repeated
// mistake patterns into natural-language constraints that are injected into
// every future prompt.
//
// Key Components:
//
//   - Trace (pkg/trace): the record of one agent run, with its ordered tool
//     calls, final answer, and the mistakes detected in it.
//
//   - Evaluator (pkg/evaluator): turns the raw message log of a run into a
//     populated trace by applying a fixed set of tool-usage rules: required
//     tools, recommended ordering, early termination, and ignored outputs.
//
//   - Memory (pkg/memory): the learning engine. Counts mistake patterns
//     across runs, freezes a constraint the moment a pattern repeats, and
//     persists everything through a JSON file or SQLite backend.
//
//   - Agent (pkg/agent): the model/tool loop. Prompt augmenters splice the
//     learned constraints (and, for the demo, deliberate confusion hints)
//     into the task before each run.
//
//   - LLM clients (pkg/llm): the Anthropic Messages API client and a
//     deterministic scripted client that reacts to the same prompt text a
//     real model would see, so the demo runs offline.
//
// The retrace CLI (cmd/retrace) ties these together into a run/stats/
// constraints command set over a YAML configuration.
package retrace
