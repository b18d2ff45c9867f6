// Package commands implements the retrace subcommands.
package commands

import (
	"math/rand"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/aletheia-ai/retrace/pkg/agent"
	"github.com/aletheia-ai/retrace/pkg/config"
	"github.com/aletheia-ai/retrace/pkg/evaluator"
	"github.com/aletheia-ai/retrace/pkg/llm"
	"github.com/aletheia-ai/retrace/pkg/memory"
	"github.com/aletheia-ai/retrace/pkg/runner"
	"github.com/aletheia-ai/retrace/pkg/tools"
)

// loadConfig resolves the effective configuration: built-in defaults when no
// file is given, otherwise the file layered over the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openMemory opens the configured storage backend and loads prior state.
func openMemory(cfg *config.Config) (*memory.Memory, error) {
	var store memory.Store
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := memory.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = memory.NewFileStore(cfg.Storage.Path)
	}
	return memory.Open(store)
}

func newClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return llm.NewAnthropicClient(cfg.APIKey(), anthropic.Model(cfg.Model))
	default:
		return llm.NewScriptedClient(), nil
	}
}

// buildRunner assembles the full pipeline: model client, travel tools, prompt
// augmenters over the shared memory, agent, evaluator.
func buildRunner(cfg *config.Config, mem *memory.Memory) (*runner.Runner, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, t := range tools.NewTravelTools(rng) {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	// Confusion runs before the reminder so learned constraints land last in
	// the prompt, after the hints they counteract.
	var augmenters []agent.Augmenter
	if cfg.Confusion {
		augmenters = append(augmenters, &agent.ConfusionInjector{Source: mem})
	}
	augmenters = append(augmenters, &agent.ConstraintReminder{Source: mem})

	ag := agent.New(client, registry,
		agent.WithAugmenters(augmenters...),
		agent.WithMaxIterations(cfg.MaxIterations))

	return runner.New(mem, evaluator.New(), ag), nil
}
