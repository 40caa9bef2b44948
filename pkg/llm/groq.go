package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to Groq through its OpenAI-compatible chat completions API.
type GroqClient struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      *logrus.Entry
}

func NewGroqClient(config Config) (*GroqClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = DefaultGroqBaseURL
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &GroqClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       config.Model,
		temperature: config.Temperature,
		logger:      logrus.WithField("provider", Groq),
	}, nil
}

func (c *GroqClient) Chat(ctx context.Context, messages []Message, systemPrompt string, tools []Tool) (*ChatResult, error) {
	// Check if the context is cancelled
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	groqMessages, err := messagesToGroq(messages)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    append([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: systemPrompt}}, groqMessages...),
		Temperature: float32(c.temperature),
	}
	if len(tools) > 0 {
		req.Tools = make([]openai.Tool, 0, len(tools))
		for _, tool := range tools {
			req.Tools = append(req.Tools, toolToGroq(tool))
		}
		req.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.WithError(err).Error("Groq API error")
		if isOpenAIRateLimit(err) {
			return nil, fmt.Errorf("groq API error: %w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("groq API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from Groq")
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) > 0 {
		call := message.ToolCalls[0]
		// Groq serialises arguments as a JSON string
		args, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("groq: %w", err)
		}
		toolCall := &ToolCall{ID: call.ID, Name: call.Function.Name, Arguments: args}
		c.logger.WithFields(logrus.Fields{"tool": toolCall.Name, "call_id": call.ID, "arguments": call.Function.Arguments}).Info("Tool call")
		return &ChatResult{
			ToolCall:   toolCall,
			RawMessage: Message{Role: RoleAssistant, ToolCall: toolCall},
		}, nil
	}

	return &ChatResult{
		Text:       message.Content,
		RawMessage: AssistantText(message.Content),
	}, nil
}

func (c *GroqClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:     c.model,
		Provider: Groq,
	}
}

func messagesToGroq(messages []Message) ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for i, msg := range messages {
		switch {
		case msg.Role == RoleAssistant && msg.ToolCall != nil:
			args, err := json.Marshal(msg.ToolCall.Arguments)
			if err != nil {
				return nil, fmt.Errorf("groq: encoding arguments of %s: %w", msg.ToolCall.Name, err)
			}
			result = append(result, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   toolCallID(msg.ToolCall, i),
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      msg.ToolCall.Name,
						Arguments: string(args),
					},
				}},
			})
		case isEmptyReply(msg):
			continue
		case msg.Role == RoleAssistant:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Text})
		case msg.Role == RoleToolResult && msg.ToolResult != nil:
			content, err := json.Marshal(msg.ToolResult.Result)
			if err != nil {
				return nil, fmt.Errorf("groq: encoding result of %s: %w", msg.ToolResult.Name, err)
			}
			result = append(result, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: precedingToolCallID(messages, i),
				Content:    string(content),
			})
		default:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Text})
		}
	}
	return result, nil
}

func toolCallID(call *ToolCall, index int) string {
	if call.ID != "" {
		return call.ID
	}
	return fmt.Sprintf("call_%d", index)
}

// precedingToolCallID finds the id of the nearest assistant tool call before index.
func precedingToolCallID(messages []Message, index int) string {
	for j := index - 1; j >= 0; j-- {
		if messages[j].Role == RoleAssistant && messages[j].ToolCall != nil {
			return toolCallID(messages[j].ToolCall, j)
		}
	}
	return "call_0"
}

func toolToGroq(tool Tool) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: map[string]interface{}{
				"type":       string(TypeObject),
				"properties": propertiesSchema(tool.Parameters.Properties),
			},
		},
	}
}

func isOpenAIRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}
