// Package testutil provides shared test doubles for the harness packages.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aletheia-ai/retrace/pkg/llm"
)

// MockClient is a mock implementation of llm.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Generate(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Message, error) {
	args := m.Called(ctx, messages, tools)
	return args.Get(0).(llm.Message), args.Error(1)
}

func (m *MockClient) ProviderName() string {
	if len(m.ExpectedCalls) > 0 {
		for _, call := range m.ExpectedCalls {
			if call.Method == "ProviderName" {
				args := m.Called()
				return args.String(0)
			}
		}
	}
	return "mock"
}

func (m *MockClient) ModelID() string {
	if len(m.ExpectedCalls) > 0 {
		for _, call := range m.ExpectedCalls {
			if call.Method == "ModelID" {
				args := m.Called()
				return args.String(0)
			}
		}
	}
	return "mock-model"
}

// ScriptReply builds an assistant message requesting a single tool call.
func ScriptReply(id, tool string, args map[string]any) llm.Message {
	return llm.Message{
		Role:     llm.RoleAssistant,
		ToolUses: []llm.ToolUse{{ID: id, Name: tool, Arguments: args}},
	}
}

// FinalReply builds a plain-text assistant message.
func FinalReply(text string) llm.Message {
	return llm.Message{Role: llm.RoleAssistant, Content: text}
}
