package llm

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	errs "github.com/aletheia-ai/retrace/pkg/errors"
	"github.com/aletheia-ai/retrace/pkg/logging"
)

const defaultMaxTokens = 2048

// AnthropicClient implements Client on top of Anthropic's Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient creates a client for the given model. The API key falls
// back to ANTHROPIC_API_KEY when empty.
func NewAnthropicClient(apiKey string, model anthropic.Model) (*AnthropicClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.InvalidInput, "API key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicClient{
		client:    &client,
		model:     model,
		maxTokens: defaultMaxTokens,
	}, nil
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }

func (a *AnthropicClient) ModelID() string { return string(a.model) }

// Generate sends the message log and tool specs to the API and converts the
// assistant reply back into the log model.
func (a *AnthropicClient) Generate(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	logger := logging.GetLogger()

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		Messages:  convertMessages(messages),
		Tools:     convertToolSpecs(tools),
		MaxTokens: a.maxTokens,
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return Message{}, errs.WithFields(
			errs.Wrap(err, errs.LLMGenerationFailed, "failed to generate response"),
			errs.Fields{"model": string(a.model)})
	}

	if message == nil || len(message.Content) == 0 {
		return Message{}, errs.New(errs.LLMGenerationFailed, "received empty response from Anthropic API")
	}

	logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	reply := Message{Role: RoleAssistant}
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			reply.Content += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(b.Input, &args); err != nil {
				args = map[string]any{}
			}
			reply.ToolUses = append(reply.ToolUses, ToolUse{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}

	return reply, nil
}

// convertMessages maps the log model onto anthropic message params. Tool
// results become user-role tool_result blocks, per the Messages API contract.
func convertMessages(messages []Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleHuman:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tu := range msg.ToolUses {
				blocks = append(blocks, anthropic.NewToolUseBlock(tu.ID, tu.Arguments, tu.Name))
			}
			params = append(params, anthropic.NewAssistantMessage(blocks...))
		case RoleTool:
			if msg.ToolResult != nil {
				params = append(params, anthropic.NewUserMessage(
					anthropic.NewToolResultBlock(msg.ToolResult.ToolUseID, msg.ToolResult.Content, false),
				))
			}
		}
	}
	return params
}

func convertToolSpecs(tools []ToolSpec) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, spec := range tools {
		properties := make(map[string]any, len(spec.Schema.Properties))
		var required []string
		for name, p := range spec.Schema.Properties {
			properties[name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return params
}
