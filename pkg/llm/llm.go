// Package llm defines the message-log model the harness exchanges with a
// language model, and the clients that produce assistant turns. The model is
// opaque to the rest of the system: messages in, one message out, optionally
// carrying tool invocations.
package llm

import (
	"context"

	models "github.com/XiaoConstantine/mcp-go/pkg/model"
)

// Role identifies the author of a message in the log.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolUse is a named tool invocation requested by the assistant.
type ToolUse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult carries a settled tool output back into the log, correlated to
// the invocation that produced it.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

// Message is one entry in the raw message log of a run.
// Assistant messages may carry zero or more tool uses; tool messages carry
// exactly one result.
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content,omitempty"`
	ToolUses   []ToolUse   `json:"tool_uses,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// NewHumanMessage builds a human-authored text message.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// NewToolResultMessage builds a tool-result message for the given invocation.
func NewToolResultMessage(toolUseID, content string) Message {
	return Message{Role: RoleTool, ToolResult: &ToolResult{ToolUseID: toolUseID, Content: content}}
}

// IsFinalAnswer reports whether the message is a plain textual assistant
// turn, which ends the run.
func (m *Message) IsFinalAnswer() bool {
	return m.Role == RoleAssistant && m.Content != "" && len(m.ToolUses) == 0
}

// ToolSpec describes a tool advertised to the model.
type ToolSpec struct {
	Name        string
	Description string
	Schema      models.InputSchema
}

// Client is the opaque language model: a fully-formed message log and tool
// specs in, one assistant message out.
type Client interface {
	Generate(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
	ProviderName() string
	ModelID() string
}
